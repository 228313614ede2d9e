package cmd

import (
	"context"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gradhouse/gradhouse/internal/arxiv"
)

var fetchDestDir string
var fetchManifest bool

var fetchCmd = &cobra.Command{
	Use:   "fetch [bulk-archive-filename]...",
	Short: "Download the manifest or bulk archives from the arXiv S3 bucket",
	Long: `Fetch downloads files from the arXiv requester-pays S3 bucket: the
manifest with --manifest, or bulk archives named as bare base names
following the bulk archive naming scheme, e.g. arXiv_src_9902_005.tar.

AWS credentials are read from AWS_ACCESS_KEY_ID and
AWS_SECRET_ACCESS_KEY; transfer costs are billed to the requester.`,
	Run: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchDestDir, "dest", "d", ".", "Destination directory for downloaded files")
	fetchCmd.Flags().BoolVar(&fetchManifest, "manifest", false, "Download arXiv_src_manifest.xml as well")
}

func runFetch(cmd *cobra.Command, args []string) {
	if !fetchManifest && len(args) == 0 {
		log.Fatal("Nothing to fetch: pass bulk archive filenames or --manifest")
	}

	ctx := context.Background()

	bucket, err := arxiv.NewBucket(bucketConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	if fetchManifest {
		dest := filepath.Join(fetchDestDir, "arXiv_src_manifest.xml")
		log.Printf("Fetching manifest to %s...", dest)
		if err := bucket.FetchManifest(ctx, dest); err != nil {
			log.Fatalf("Failed to fetch manifest: %v", err)
		}
	}

	for idx, filename := range args {
		log.Printf("[%d/%d] Fetching %s...", idx+1, len(args), filename)
		if err := bucket.FetchBulkArchive(ctx, filename, fetchDestDir); err != nil {
			log.Fatalf("Failed to fetch %s: %v", filename, err)
		}
	}

	if len(args) > 0 {
		log.Printf("Downloaded %d archive(s) to %s", len(args), fetchDestDir)
	}
}
