package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index [output.db]",
	Short: "Build the docs search index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := "docs.db"
		if len(args) == 1 {
			output = args[0]
		}

		_ = os.Remove(output) // Overwrite
		start := time.Now()
		n, err := index.Build(osfs.New(docsDir), output)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d pages into %s in %v.\n", n, output, time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
