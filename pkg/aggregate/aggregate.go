// Package aggregate provides the result records produced by the
// aggregation engines, and the field enumeration the verifier uses to
// compare contender results.
package aggregate

// FieldKind discriminates how a field is compared during verification.
type FieldKind int

const (
	// KindInt fields must match exactly across contenders.
	KindInt FieldKind = iota
	// KindFloat fields match within a relative tolerance.
	KindFloat
)

// Field is one comparable value of an aggregate record.
type Field struct {
	Name  string
	Kind  FieldKind
	Int   int64
	Float float64
}

// IntField builds an exactly-compared field.
func IntField(name string, v int64) Field {
	return Field{Name: name, Kind: KindInt, Int: v}
}

// FloatField builds a tolerance-compared field.
func FloatField(name string, v float64) Field {
	return Field{Name: name, Kind: KindFloat, Float: v}
}

// Aggregate is implemented by every aggregate record a workload produces.
type Aggregate interface {
	// RowCount returns the number of rows the record covers.
	RowCount() int64
	// Fields enumerates the record's comparable values in a stable order.
	Fields() []Field
}

// TripTotals is the flat workload's aggregate: running sums over the
// projected taxi columns, folded left-to-right across files.
type TripTotals struct {
	// Rows is the total row count across all files.
	Rows int64 `json:"rows"`

	// PassengerCount is the sum of the passenger_count column.
	PassengerCount int64 `json:"passenger_count"`

	// TripDistance is the sum of the trip_distance column.
	TripDistance float64 `json:"trip_distance"`

	// FareAmount is the sum of the fare_amount column.
	FareAmount float64 `json:"fare_amount"`
}

// RowCount implements Aggregate.
func (t TripTotals) RowCount() int64 {
	return t.Rows
}

// Fields implements Aggregate.
func (t TripTotals) Fields() []Field {
	return []Field{
		IntField("rows", t.Rows),
		IntField("passenger_count", t.PassengerCount),
		FloatField("trip_distance", t.TripDistance),
		FloatField("fare_amount", t.FareAmount),
	}
}

// Merge combines two partial totals, keeping left-to-right order: the
// receiver covers the earlier files, other the later ones.
func (t TripTotals) Merge(other TripTotals) TripTotals {
	return TripTotals{
		Rows:           t.Rows + other.Rows,
		PassengerCount: t.PassengerCount + other.PassengerCount,
		TripDistance:   t.TripDistance + other.TripDistance,
		FareAmount:     t.FareAmount + other.FareAmount,
	}
}

// PlaceSummary is the nested workload's aggregate over a single places
// file. All extrema default to zero when no valid row exists.
type PlaceSummary struct {
	Rows int64 `json:"rows"`

	MinVersion int32 `json:"min_version"`
	MaxVersion int32 `json:"max_version"`

	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`

	MinBboxXmin float32 `json:"min_bbox_xmin"`
	MaxBboxXmax float32 `json:"max_bbox_xmax"`

	// WebsiteCount sums per-row website list cardinalities; null rows
	// are skipped, not counted as zero.
	WebsiteCount    int64 `json:"website_count"`
	MaxWebsiteCount int64 `json:"max_website_count"`

	SourceCount    int64 `json:"source_count"`
	MaxSourceCount int64 `json:"max_source_count"`

	AddressCount    int64 `json:"address_count"`
	MaxAddressCount int64 `json:"max_address_count"`

	// NameEntryCount sums names.common map cardinalities derived from
	// offset boundary pairs.
	NameEntryCount int64 `json:"name_entry_count"`
	MaxNameEntries int64 `json:"max_name_entries"`

	// MaxPrimaryNameLength is the longest names.primary value in Unicode
	// code points.
	MaxPrimaryNameLength int64 `json:"max_primary_name_length"`
}

// RowCount implements Aggregate.
func (p PlaceSummary) RowCount() int64 {
	return p.Rows
}

// Fields implements Aggregate.
func (p PlaceSummary) Fields() []Field {
	return []Field{
		IntField("rows", p.Rows),
		IntField("min_version", int64(p.MinVersion)),
		IntField("max_version", int64(p.MaxVersion)),
		FloatField("min_confidence", p.MinConfidence),
		FloatField("max_confidence", p.MaxConfidence),
		FloatField("min_bbox_xmin", float64(p.MinBboxXmin)),
		FloatField("max_bbox_xmax", float64(p.MaxBboxXmax)),
		IntField("website_count", p.WebsiteCount),
		IntField("max_website_count", p.MaxWebsiteCount),
		IntField("source_count", p.SourceCount),
		IntField("max_source_count", p.MaxSourceCount),
		IntField("address_count", p.AddressCount),
		IntField("max_address_count", p.MaxAddressCount),
		IntField("name_entry_count", p.NameEntryCount),
		IntField("max_name_entries", p.MaxNameEntries),
		IntField("max_primary_name_length", p.MaxPrimaryNameLength),
	}
}
