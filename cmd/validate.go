package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradhouse/gradhouse/internal/arxiv"
)

var validateAsSubmission bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate bulk archive or submission files",
	Long: `Validate checks files against the arXiv conventions: naming scheme,
file type by extension and by content, and safe extractability for
archives. All problems found are reported, one file per block.

Examples:
  # Validate bulk archives
  ./gradhouse validate arXiv_src_9902_005.tar

  # Validate individual submission files
  ./gradhouse validate --submission 1202.3054.gz cond-mat9602101.gz`,
	Args: cobra.MinimumNArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVarP(&validateAsSubmission, "submission", "s", false, "Validate as submission files instead of bulk archives")
}

func runValidate(cmd *cobra.Command, args []string) {
	invalid := 0

	for _, path := range args {
		var problems []string
		if validateAsSubmission {
			problems = arxiv.CheckSubmission(path)
		} else {
			problems = arxiv.CheckBulkArchive(path)
		}

		if len(problems) == 0 {
			fmt.Printf("%s: OK\n", path)
			continue
		}

		invalid++
		fmt.Printf("%s: %d problem(s)\n", path, len(problems))
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
	}

	if invalid > 0 {
		log.Printf("%d of %d file(s) failed validation", invalid, len(args))
		os.Exit(1)
	}
}
