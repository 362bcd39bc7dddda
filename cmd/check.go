package cmd

import (
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/internal/ctxlog"
	"github.com/agentic-research/sidetree/internal/snippet"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify doc refs and lint fenced code snippets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		log := ctxlog.FromContext(ctx)

		resolved, err := resolveSidebar()
		if err != nil {
			return err
		}

		docs := osfs.New(docsDir)
		problems := 0
		for _, id := range resolved.DocIDs() {
			path, content, err := readPage(docs, id)
			if err != nil {
				fmt.Printf("missing doc: %s\n", id)
				problems++
				continue
			}
			log.Debug("checking page", "doc", id, "path", path)

			issues, err := snippet.CheckAll(path, content)
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Println(issue)
				problems++
			}
		}

		if problems > 0 {
			return fmt.Errorf("check failed: %d problem(s)", problems)
		}
		fmt.Printf("Checked %d docs, no problems.\n", len(resolved.DocIDs()))
		return nil
	},
}

// readPage finds the page file backing a doc id.
func readPage(docs billy.Filesystem, id string) (string, []byte, error) {
	for _, ext := range []string{".md", ".mdx"} {
		content, err := util.ReadFile(docs, id+ext)
		if err == nil {
			return id + ext, content, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("read page %s: %w", id+ext, err)
		}
	}
	return "", nil, fmt.Errorf("no page for doc %s", id)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
