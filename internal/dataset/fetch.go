package dataset

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/iamkarasik/hardwood/internal/storage"
)

// Public dataset endpoints.
const (
	DefaultTaxiBaseURL = "https://d37ci6vzurychx.cloudfront.net/trip-data/"
	DefaultPlacesURL   = "https://overturemaps-us-west-2.s3.us-west-2.amazonaws.com/release/2026-02-18.0/" +
		"theme=places/type=place/part-00000-308cb36d-c529-4dc2-83bb-fe6b282a2b1a-c000.zstd.parquet"
)

// FetchConfig tunes a Fetcher. Zero-value fields get defaults.
type FetchConfig struct {
	// Concurrency is the maximum number of parallel downloads.
	Concurrency int
	// TaxiBaseURL is the directory URL monthly trip files hang off.
	TaxiBaseURL string
	// PlacesURL is the full URL of the places file.
	PlacesURL string
	// Client is the HTTP client to download with.
	Client *http.Client
}

// Fetcher downloads benchmark datasets over HTTP into an object store.
// Objects that already exist non-empty are skipped. A failed download is
// removed from the store and recorded per object; it never fails the
// whole fetch.
type Fetcher struct {
	store       storage.ObjectStore
	client      *http.Client
	concurrency int
	taxiBaseURL string
	placesURL   string
}

// NewFetcher creates a fetcher writing into the given store.
func NewFetcher(store storage.ObjectStore, cfg FetchConfig) *Fetcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if cfg.TaxiBaseURL == "" {
		cfg.TaxiBaseURL = DefaultTaxiBaseURL
	}
	if cfg.PlacesURL == "" {
		cfg.PlacesURL = DefaultPlacesURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &Fetcher{
		store:       store,
		client:      cfg.Client,
		concurrency: cfg.Concurrency,
		taxiBaseURL: cfg.TaxiBaseURL,
		placesURL:   cfg.PlacesURL,
	}
}

// FetchResult summarizes a fetch pass.
type FetchResult struct {
	Downloaded int
	Skipped    int
	Failed     map[string]error
}

// Fetch downloads the twelve taxi months of the given year plus the
// places file, in parallel up to the configured concurrency.
func (f *Fetcher) Fetch(ctx context.Context, taxiYear int) (*FetchResult, error) {
	type job struct {
		key string
		url string
	}
	jobs := make([]job, 0, 13)
	for month := 1; month <= 12; month++ {
		key := TaxiFile(taxiYear, month)
		jobs = append(jobs, job{key: key, url: f.taxiBaseURL + key})
	}
	jobs = append(jobs, job{key: PlacesFile, url: f.placesURL})

	result := &FetchResult{Failed: make(map[string]error)}
	sem := semaphore.NewWeighted(int64(f.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, j := range jobs {
		if info, err := f.store.Stat(ctx, j.key); err == nil && info.Size > 0 {
			log.Printf("fetch: %s already present (%d bytes)", j.key, info.Size)
			result.Skipped++
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Failed[j.key] = err
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(j job) {
			defer sem.Release(1)
			defer wg.Done()

			if err := f.download(ctx, j.key, j.url); err != nil {
				log.Printf("fetch: %s failed, skipping: %v", j.key, err)
				mu.Lock()
				result.Failed[j.key] = err
				mu.Unlock()
				return
			}
			mu.Lock()
			result.Downloaded++
			mu.Unlock()
		}(j)
	}

	wg.Wait()
	return result, nil
}

func (f *Fetcher) download(ctx context.Context, key, url string) error {
	log.Printf("fetch: downloading %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	info, err := f.store.Put(ctx, key, resp.Body)
	if err != nil {
		// A failed copy can leave a partial object behind.
		if delErr := f.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Printf("fetch: cleanup %s: %v", key, delErr)
		}
		return fmt.Errorf("store %s: %w", key, err)
	}
	log.Printf("fetch: downloaded %s (%d bytes)", key, info.Size)
	return nil
}
