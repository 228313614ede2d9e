package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gradhouse/gradhouse/internal/service"
	"github.com/gradhouse/gradhouse/internal/store"
)

var scanBundlePath string
var scanSubmissionsDir string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Register a bulk archive and its extracted submissions",
	Long: `Scan validates a bulk archive file, registers it in the bulk archive
registry under its SHA256, and then registers every submission file in
the extraction directory, linking each to the archive.

Examples:
  # Register an archive and its extracted submissions
  ./gradhouse scan --bundle arXiv_src_9902_005.tar --dir ./extracted/9902_005`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanBundlePath, "bundle", "b", "", "Path to the bulk archive file (required)")
	scanCmd.Flags().StringVarP(&scanSubmissionsDir, "dir", "d", "", "Directory holding the extracted submission files")
	scanCmd.MarkFlagRequired("bundle")
}

func runScan(cmd *cobra.Command, args []string) {
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

	bundleHash, err := importer.RegisterBundle(ctx, scanBundlePath)
	if err != nil {
		log.Fatalf("Failed to register bulk archive: %v", err)
	}

	if scanSubmissionsDir == "" {
		return
	}

	stats, err := importer.RegisterSubmissions(ctx, scanSubmissionsDir, bundleHash)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Scan cancelled")
			os.Exit(1)
		}
		log.Fatalf("Scan failed: %v", err)
	}
	importer.PrintScanSummary(stats)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
