// Package dataset locates, downloads, and synthesizes the datasets the
// benchmark reads. The flat workload scans monthly NYC yellow taxi trip
// files; the nested workload reads a single Overture Maps places file.
package dataset

import (
	"context"
	"fmt"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/storage"
)

// Kind identifies a benchmark dataset family.
type Kind string

const (
	KindFlat   Kind = "flat"
	KindNested Kind = "nested"
)

// PlacesFile is the object key of the nested-workload dataset.
const PlacesFile = "overture_places.zstd.parquet"

// The flat scan covers every month for which trip data has been
// published.
const (
	flatStartYear  = 2016
	flatStartMonth = 1
	flatEndYear    = 2025
	flatEndMonth   = 11
)

// TaxiFile returns the object key for one month of trip data.
func TaxiFile(year, month int) string {
	return fmt.Sprintf("yellow_tripdata_%d-%02d.parquet", year, month)
}

// Dataset describes the files a workload will read.
type Dataset struct {
	Kind       Kind
	Files      []string
	TotalBytes int64
	// Source is a human-readable description of where the data lives,
	// filled in by the caller that owns the store.
	Source string
}

// DiscoverFlat scans the store for monthly trip files in chronological
// order. Only objects that exist and are non-empty are included; a scan
// that finds nothing reports missing data.
func DiscoverFlat(ctx context.Context, store storage.ObjectStore) (Dataset, error) {
	ds := Dataset{Kind: KindFlat}
	year, month := flatStartYear, flatStartMonth
	for year < flatEndYear || (year == flatEndYear && month <= flatEndMonth) {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		name := TaxiFile(year, month)
		info, err := store.Stat(ctx, name)
		switch {
		case err == nil && info.Size > 0:
			ds.Files = append(ds.Files, name)
			ds.TotalBytes += info.Size
		case err != nil && !errors.Is(err, storage.ErrObjectNotFound):
			return Dataset{}, errors.NewStorageError(errors.CodeStatFailed,
				fmt.Sprintf("dataset: stat %s", name), err)
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	if len(ds.Files) == 0 {
		return Dataset{}, errors.NewMissingDataError(
			`no data files found: run "hardwood-bench fetch" first`)
	}
	return ds, nil
}

// DiscoverNested looks up the places file.
func DiscoverNested(ctx context.Context, store storage.ObjectStore) (Dataset, error) {
	info, err := store.Stat(ctx, PlacesFile)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return Dataset{}, errors.NewMissingDataError(
			fmt.Sprintf(`%s not found: run "hardwood-bench fetch" first`, PlacesFile))
	}
	if err != nil {
		return Dataset{}, errors.NewStorageError(errors.CodeStatFailed,
			fmt.Sprintf("dataset: stat %s", PlacesFile), err)
	}
	if info.Size == 0 {
		return Dataset{}, errors.NewMissingDataError(
			fmt.Sprintf(`%s is empty: run "hardwood-bench fetch" first`, PlacesFile))
	}
	return Dataset{
		Kind:       KindNested,
		Files:      []string{PlacesFile},
		TotalBytes: info.Size,
	}, nil
}
