package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gradhouse/gradhouse/internal/arxiv"
	"github.com/gradhouse/gradhouse/internal/service"
	"github.com/gradhouse/gradhouse/internal/store"
)

var importManifestPath string
var importFetch bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the arXiv manifest and diff it against the stored snapshot",
	Long: `Import loads arXiv_src_manifest.xml, verifies it is strictly newer
than the stored snapshot, reports the new and updated bulk archives, and
stores the manifest as the new snapshot.

Examples:
  # Import a previously downloaded manifest
  ./gradhouse import --manifest arXiv_src_manifest.xml

  # Fetch the manifest from the arXiv S3 bucket first
  ./gradhouse import --fetch`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importManifestPath, "manifest", "m", "arXiv_src_manifest.xml", "Path to the manifest XML file")
	importCmd.Flags().BoolVar(&importFetch, "fetch", false, "Download the manifest from S3 before importing")
}

func runImport(cmd *cobra.Command, args []string) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if importFetch {
		bucket, err := arxiv.NewBucket(bucketConfigFromEnv())
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
		log.Println("Fetching manifest from the arXiv S3 bucket...")
		if err := bucket.FetchManifest(ctx, importManifestPath); err != nil {
			log.Fatalf("Failed to fetch manifest: %v", err)
		}
	}

	log.Println("Connecting to database...")
	db, err := store.NewDB(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	importer := service.NewImporter(
		store.NewManifestStore(db),
		store.NewBundleStore(db),
		store.NewSubmissionStore(db),
	)

	stats, err := importer.ImportManifest(ctx, importManifestPath)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Import cancelled")
			os.Exit(1)
		}
		log.Fatalf("Import failed: %v", err)
	}
	importer.PrintImportSummary(stats)
}

// bucketConfigFromEnv builds the S3 configuration from the environment.
// The arXiv bucket is requester pays, so AWS credentials are required.
func bucketConfigFromEnv() arxiv.BucketConfig {
	return arxiv.BucketConfig{
		Endpoint:  os.Getenv("ARXIV_S3_ENDPOINT"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}
