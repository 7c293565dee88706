package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/futig/jarvis-backend/internal/pkg/chunker"
	"github.com/futig/jarvis-backend/internal/usecase/ingest"
)

const defaultDocsDir = "../docs"

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Load the .txt files of a directory into memory",
	Long: `Splits every .txt file of the directory into fixed size chunks, embeds
them and stores each chunk as <file>_<n>. Re-running replaces the chunks of
files that were loaded before. The directory defaults to ../docs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var chunkSize int

func init() {
	ingestCmd.Flags().IntVar(&chunkSize, "chunk-size", chunker.DefaultChunkSize, "Characters per chunk")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	dir := defaultDocsDir
	if len(args) > 0 {
		dir = args[0]
	}

	svc := ingestService
	if chunkSize != chunker.DefaultChunkSize && core != nil {
		svc = core.IngestWithChunker(chunker.New(chunker.WithChunkSize(chunkSize)))
	}

	reports, err := svc.IngestDir(ctx, dir)
	printReports(cmd, reports)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		cmd.Printf("No .txt files found in %s\n", dir)
	}
	return nil
}

func printReports(cmd *cobra.Command, reports []ingest.FileReport) {
	for _, r := range reports {
		cmd.Printf("Upserted %d chunks from %s\n", r.Chunks, r.Path)
	}
}
