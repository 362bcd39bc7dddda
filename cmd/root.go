// Package cmd wires the sidetree CLI: build, check, index, search, serve
// and mount subcommands over one shared set of input flags.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/api"
	"github.com/agentic-research/sidetree/internal/ctxlog"
	"github.com/agentic-research/sidetree/internal/manifest"
	"github.com/agentic-research/sidetree/internal/resolve"
)

var (
	manifestPath string
	tocPath      string
	docsDir      string
	sidebarName  string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:           "sidetree",
	Short:         "Sidetree: documentation sidebar compiler",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "sidebar.hcl", "Path to the sidebar manifest")
	rootCmd.PersistentFlags().StringVarP(&tocPath, "toc", "t", "examples-toc.json", "Path to the generated table of contents")
	rootCmd.PersistentFlags().StringVarP(&docsDir, "docs", "d", "docs", "Path to the docs directory")
	rootCmd.PersistentFlags().StringVar(&sidebarName, "name", "", "Sidebar to use when the manifest declares several")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// commandContext attaches a logger at the requested level to the cobra
// context.
func commandContext(cmd *cobra.Command) context.Context {
	return ctxlog.WithLogger(cmd.Context(), ctxlog.New(logLevel, os.Stderr))
}

// resolveSidebar runs the full pipeline: manifest load, sidebar selection,
// toc splice.
func resolveSidebar() (api.Sidebar, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return api.Sidebar{}, err
	}
	static, err := m.Sidebar(sidebarName)
	if err != nil {
		return api.Sidebar{}, err
	}
	return resolve.BuildFromFile(static, tocPath)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
