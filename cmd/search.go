package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/internal/index"
)

var searchIndexPath string

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find docs pages containing a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.ToLower(args[0])

		r, err := index.OpenReader(searchIndexPath)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		docs, err := r.Search(term)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Printf("No pages contain %q.\n", term)
			return nil
		}
		for _, id := range docs {
			page, err := r.Doc(id)
			if err != nil {
				return err
			}
			title := page.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s\t%s\t%s\n", id, title, page.Path)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchIndexPath, "index", "docs.db", "Path to the docs index")
	rootCmd.AddCommand(searchCmd)
}
