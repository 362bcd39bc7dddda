package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/api"
	"github.com/agentic-research/sidetree/internal/ctxlog"
)

var buildCmd = &cobra.Command{
	Use:   "build [output.json]",
	Short: "Resolve the sidebar and write the artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := "sidebar.json"
		if len(args) == 1 {
			output = args[0]
		}
		ctx := commandContext(cmd)

		start := time.Now()
		resolved, err := resolveSidebar()
		if err != nil {
			return err
		}
		if err := writeArtifact(resolved, output); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("sidebar resolved",
			"docs", len(resolved.DocIDs()), "elapsed", time.Since(start))
		fmt.Printf("Wrote %s (%d doc refs).\n", output, len(resolved.DocIDs()))
		return nil
	},
}

// writeArtifact writes the resolved sidebar as JSON, atomically: the
// artifact appears complete or not at all.
func writeArtifact(s api.Sidebar, output string) error {
	data, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sidebar: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(output), ".sidebar-*.json")
	if err != nil {
		return fmt.Errorf("create artifact temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
