package benchmark

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/iamkarasik/hardwood/internal/dataset"
	"github.com/iamkarasik/hardwood/internal/storage"
)

// syntheticBenchStore builds a fresh local store populated with synthetic
// datasets. The store lives in a per-benchmark temp dir and is removed when
// the benchmark finishes.
func syntheticBenchStore(b *testing.B, cfg dataset.SynthConfig) *storage.LocalStore {
	b.Helper()

	store, err := storage.NewLocalStore(b.TempDir())
	if err != nil {
		b.Fatalf("failed to create store: %v", err)
	}
	if err := dataset.Synthesize(context.Background(), store, cfg); err != nil {
		b.Fatalf("failed to synthesize datasets: %v", err)
	}
	return store
}

// realDataStore returns the store holding real downloaded datasets.
// It respects HARDWOOD_STORAGE_TYPE=s3 from ../../.env or the environment;
// otherwise it opens the local directory HARDWOOD_DATA_DIR points at.
// Benchmarks that need real data skip when neither is configured.
func realDataStore(b *testing.B) storage.ObjectStore {
	b.Helper()

	// Try loading .env from the project root so benchmarks pick up the
	// same settings as the CLI.
	_ = godotenv.Load("../../.env")

	if os.Getenv("HARDWOOD_STORAGE_TYPE") == "s3" {
		bucket := os.Getenv("HARDWOOD_S3_BUCKET")
		if bucket == "" {
			b.Fatal("HARDWOOD_S3_BUCKET is required for s3 benchmarks")
		}
		store, err := storage.NewS3Store(context.Background(), bucket, storage.S3Config{
			Region:       os.Getenv("HARDWOOD_S3_REGION"),
			Endpoint:     os.Getenv("HARDWOOD_S3_ENDPOINT"),
			UsePathStyle: os.Getenv("HARDWOOD_S3_PATH_STYLE") == "true",
		})
		if err != nil {
			b.Fatalf("failed to initialize s3 store: %v", err)
		}
		b.Logf("running benchmark against s3 bucket %s", bucket)
		return store
	}

	dir := os.Getenv("HARDWOOD_DATA_DIR")
	if dir == "" {
		b.Skip("HARDWOOD_DATA_DIR not set, skipping real-data benchmark")
	}
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		b.Fatalf("failed to open store at %s: %v", dir, err)
	}
	return store
}
