package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"unicode/utf8"

	"github.com/parquet-go/parquet-go"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/storage"
)

// TripRecord is the synthetic flat-workload row. Column names and
// physical types match the published trip files, where every measure
// column is optional.
type TripRecord struct {
	VendorID       int32    `parquet:"vendor_id"`
	PassengerCount *int64   `parquet:"passenger_count"`
	TripDistance   *float64 `parquet:"trip_distance"`
	FareAmount     *float64 `parquet:"fare_amount"`
}

// Place mirrors the slice of the Overture places schema the nested
// workload touches. Zero values on optional non-pointer fields are
// written as nulls.
type Place struct {
	ID         string         `parquet:"id"`
	Version    *int32         `parquet:"version"`
	Confidence *float64       `parquet:"confidence"`
	Bbox       *PlaceBbox     `parquet:"bbox"`
	Websites   []string       `parquet:"websites,list,optional"`
	Sources    []PlaceSource  `parquet:"sources,list,optional"`
	Addresses  []PlaceAddress `parquet:"addresses,list,optional"`
	Names      *PlaceNames    `parquet:"names"`
}

type PlaceBbox struct {
	Xmin float32 `parquet:"xmin,optional"`
	Xmax float32 `parquet:"xmax,optional"`
	Ymin float32 `parquet:"ymin,optional"`
	Ymax float32 `parquet:"ymax,optional"`
}

type PlaceSource struct {
	Dataset  string `parquet:"dataset,optional"`
	RecordID string `parquet:"record_id,optional"`
}

type PlaceAddress struct {
	Freeform string `parquet:"freeform,optional"`
	Country  string `parquet:"country,optional"`
}

type PlaceNames struct {
	Primary string            `parquet:"primary,optional"`
	Common  map[string]string `parquet:"common,optional"`
}

// SynthConfig controls synthetic dataset generation. Zero-value fields
// get defaults.
type SynthConfig struct {
	Seed      int64
	Months    int
	TripRows  int
	PlaceRows int
}

// Synthetic trip files are written into the most recent scan year.
const synthFlatYear = 2025

// Synthesize writes schema-compatible synthetic datasets into the
// store: monthly trip files for the flat workload and a places file for
// the nested one. Row contents are deterministic for a given seed.
func Synthesize(ctx context.Context, store storage.ObjectStore, cfg SynthConfig) error {
	if cfg.Months < 1 {
		cfg.Months = 3
	}
	if cfg.Months > 11 {
		cfg.Months = 11
	}
	if cfg.TripRows < 1 {
		cfg.TripRows = 5000
	}
	if cfg.PlaceRows < 1 {
		cfg.PlaceRows = 2000
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for month := 1; month <= cfg.Months; month++ {
		key := TaxiFile(synthFlatYear, month)
		rows := GenerateTrips(rng, cfg.TripRows)
		if err := writeRows(ctx, store, key, rows); err != nil {
			return err
		}
		log.Printf("synth: wrote %s (%d rows)", key, len(rows))
	}

	places := GeneratePlaces(rng, cfg.PlaceRows)
	if err := writeRows(ctx, store, PlacesFile, places); err != nil {
		return err
	}
	log.Printf("synth: wrote %s (%d rows)", PlacesFile, len(places))
	return nil
}

// GenerateTrips produces n trip rows from the generator.
func GenerateTrips(rng *rand.Rand, n int) []TripRecord {
	rows := make([]TripRecord, n)
	for i := range rows {
		r := TripRecord{VendorID: int32(1 + rng.Intn(2))}
		if rng.Intn(8) != 0 {
			pc := int64(1 + rng.Intn(5))
			r.PassengerCount = &pc
		}
		if rng.Intn(64) != 0 {
			td := math.Round(rng.Float64()*3000) / 100
			r.TripDistance = &td
		}
		if rng.Intn(64) != 0 {
			fa := math.Round((2.5+rng.Float64()*80)*100) / 100
			r.FareAmount = &fa
		}
		rows[i] = r
	}
	return rows
}

var (
	synthNames = []string{
		"Blue Bottle Coffee",
		"Trattoria da Enzo",
		"Café de Flore",
		"寿司処 さくら",
		"Книжарница Хеликон",
		"Şekerci Camii Börekçisi",
		"Panadería La Espiga",
	}
	synthLangs     = []string{"en", "fr", "de", "ja", "es", "tr"}
	synthDatasets  = []string{"osm", "meta", "msft"}
	synthCountries = []string{"US", "FR", "DE", "JP", "TR", "MX"}
)

// GeneratePlaces produces n place rows from the generator.
func GeneratePlaces(rng *rand.Rand, n int) []Place {
	rows := make([]Place, n)
	for i := range rows {
		p := Place{ID: fmt.Sprintf("%08x%08x", rng.Uint32(), rng.Uint32())}
		if rng.Intn(8) != 0 {
			v := int32(1 + rng.Intn(12))
			p.Version = &v
		}
		if rng.Intn(8) != 0 {
			c := math.Round(rng.Float64()*1000) / 1000
			p.Confidence = &c
		}
		if rng.Intn(10) != 0 {
			xmin := -122 + rng.Float32()*50
			ymin := 25 + rng.Float32()*20
			p.Bbox = &PlaceBbox{
				Xmin: xmin,
				Xmax: xmin + 0.001 + rng.Float32(),
				Ymin: ymin,
				Ymax: ymin + 0.001 + rng.Float32(),
			}
		}
		if rng.Intn(2) == 0 {
			p.Websites = make([]string, 1+rng.Intn(3))
			for j := range p.Websites {
				p.Websites[j] = fmt.Sprintf("https://example-%04d.test/", rng.Intn(10000))
			}
		}
		if rng.Intn(4) != 0 {
			p.Sources = make([]PlaceSource, 1+rng.Intn(2))
			for j := range p.Sources {
				p.Sources[j] = PlaceSource{
					Dataset:  synthDatasets[rng.Intn(len(synthDatasets))],
					RecordID: fmt.Sprintf("%08x", rng.Uint32()),
				}
			}
		}
		if rng.Intn(3) != 0 {
			p.Addresses = make([]PlaceAddress, 1+rng.Intn(2))
			for j := range p.Addresses {
				p.Addresses[j] = PlaceAddress{
					Freeform: fmt.Sprintf("%d Main St", 1+rng.Intn(999)),
					Country:  synthCountries[rng.Intn(len(synthCountries))],
				}
			}
		}
		if rng.Intn(16) != 0 {
			names := &PlaceNames{}
			if rng.Intn(10) != 0 {
				names.Primary = synthNames[rng.Intn(len(synthNames))]
			}
			if k := rng.Intn(4); k > 0 {
				names.Common = make(map[string]string, k)
				for j := 0; j < k; j++ {
					names.Common[synthLangs[rng.Intn(len(synthLangs))]] = names.Primary
				}
			}
			p.Names = names
		}
		rows[i] = p
	}
	return rows
}

func writeRows[T any](ctx context.Context, store storage.ObjectStore, key string, rows []T) error {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf)
	if _, err := w.Write(rows); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed,
			fmt.Sprintf("dataset: encode %s", key), err)
	}
	if err := w.Close(); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed,
			fmt.Sprintf("dataset: encode %s", key), err)
	}
	if _, err := store.Put(ctx, key, &buf); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed,
			fmt.Sprintf("dataset: put %s", key), err)
	}
	return nil
}

// PlaceCounts tallies per-row container sizes the slow way, reading
// whole rows. It cross-checks the columnar offset arithmetic.
type PlaceCounts struct {
	Rows           int64
	WebsiteTotal   int64
	WebsiteMax     int64
	SourceTotal    int64
	SourceMax      int64
	AddressTotal   int64
	AddressMax     int64
	NameEntryTotal int64
	NameEntryMax   int64
	MaxPrimaryLen  int64
}

// NaivePlaceCounts reads a places file row by row and counts container
// entries per row.
func NaivePlaceCounts(ctx context.Context, store storage.ObjectStore, key string) (PlaceCounts, error) {
	obj, err := store.Open(ctx, key)
	if err != nil {
		return PlaceCounts{}, errors.NewReadError(fmt.Sprintf("dataset: open %s", key), err)
	}
	defer obj.Close()

	pf, err := parquet.OpenFile(obj, obj.Size())
	if err != nil {
		return PlaceCounts{}, errors.NewReadError(fmt.Sprintf("dataset: parse %s", key), err)
	}

	reader := parquet.NewGenericReader[Place](pf)
	defer reader.Close()

	var counts PlaceCounts
	batch := make([]Place, 256)
	for {
		if err := ctx.Err(); err != nil {
			return PlaceCounts{}, err
		}
		n, err := reader.Read(batch)
		for _, p := range batch[:n] {
			counts.Rows++
			tally(&counts.WebsiteTotal, &counts.WebsiteMax, len(p.Websites))
			tally(&counts.SourceTotal, &counts.SourceMax, len(p.Sources))
			tally(&counts.AddressTotal, &counts.AddressMax, len(p.Addresses))
			if p.Names != nil {
				tally(&counts.NameEntryTotal, &counts.NameEntryMax, len(p.Names.Common))
				if l := int64(utf8.RuneCountInString(p.Names.Primary)); l > counts.MaxPrimaryLen {
					counts.MaxPrimaryLen = l
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return PlaceCounts{}, errors.NewReadError(fmt.Sprintf("dataset: read %s", key), err)
		}
	}
	return counts, nil
}

func tally(total, max *int64, n int) {
	*total += int64(n)
	if int64(n) > *max {
		*max = int64(n)
	}
}
