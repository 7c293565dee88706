package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the memory index",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the memory index if it does not exist",
	Long: `Creates the vector index with the configured name, dimension and metric
and waits until it accepts traffic. Running it on an existing index is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runIndexCreate,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the memory index and every stored memory",
	Long: `Drops the vector index entirely. All remembered exchanges and ingested
documents are lost. Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runIndexDelete,
}

var skipConfirm bool

func init() {
	indexDeleteCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Delete without asking for confirmation")
	indexCmd.AddCommand(indexCreateCmd, indexDeleteCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexCreate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	spec := indexService.Spec()
	cmd.Printf("Ensuring index %s (dimension %d, %s)...\n", spec.Name, spec.Dimension, spec.Metric)
	if err := indexService.Ensure(ctx); err != nil {
		return err
	}
	cmd.Printf("Index %s is ready.\n", spec.Name)
	return nil
}

func runIndexDelete(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	name := indexService.Spec().Name
	if !skipConfirm {
		cmd.Printf("This deletes index %s and every memory in it.\n", name)
		cmd.Print("Press Enter to continue or Ctrl+C to abort...")
		if err := waitForEnter(cmd.InOrStdin()); err != nil {
			cmd.Println()
			return err
		}
		cmd.Println()
	}

	if err := indexService.Delete(ctx); err != nil {
		return err
	}

	cmd.Println()
	cmd.Println("JARVIS OLD INDEX DELETED SUCCESSFULLY!")
	cmd.Println("You can now restart your backend.")
	cmd.Println()
	return nil
}

// waitForEnter blocks until the user presses Enter. On a terminal a single
// keypress decides; any other key aborts.
func waitForEnter(in io.Reader) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		defer term.Restore(int(f.Fd()), state)

		key := make([]byte, 1)
		if _, err := f.Read(key); err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if key[0] != '\r' && key[0] != '\n' {
			return errAborted
		}
		return nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return errAborted
	}
	return nil
}
