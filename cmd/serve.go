package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sidetree/api"
	"github.com/agentic-research/sidetree/internal/control"
	"github.com/agentic-research/sidetree/internal/ctxlog"
	"github.com/agentic-research/sidetree/internal/nfsmount"
	"github.com/agentic-research/sidetree/internal/tree"
	"github.com/agentic-research/sidetree/internal/watch"
)

var (
	serveWatch    bool
	serveOut      string
	serveCtlPath  string
	serveDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve [mountpoint]",
	Short: "Serve the resolved sidebar tree over NFS",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		log := ctxlog.FromContext(ctx)

		resolved, store, err := projectTree()
		if err != nil {
			return err
		}
		hot := tree.NewHotSwap(store)

		var ctl *control.Controller
		if serveCtlPath != "" {
			ctl, err = control.OpenOrCreate(serveCtlPath)
			if err != nil {
				return err
			}
			defer func() { _ = ctl.Close() }()
		}
		if err := publish(resolved, ctl); err != nil {
			return err
		}

		server, err := nfsmount.NewServer(nfsmount.NewNavFS(hot))
		if err != nil {
			return err
		}
		defer func() { _ = server.Close() }()
		fmt.Printf("Serving sidebar tree on NFS port %d.\n", server.Port())

		if len(args) == 1 {
			mountpoint := args[0]
			if err := nfsmount.Mount(server.Port(), mountpoint); err != nil {
				return err
			}
			defer func() { _ = nfsmount.Unmount(mountpoint) }()
			fmt.Printf("Mounted at %s.\n", mountpoint)
		}

		if serveWatch {
			w, err := watch.New(serveDebounce)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()
			for _, path := range []string{manifestPath, tocPath} {
				if err := w.Add(path); err != nil {
					return fmt.Errorf("watch %s: %w", path, err)
				}
			}
			if err := w.AddRecursive(docsDir); err != nil {
				return fmt.Errorf("watch %s: %w", docsDir, err)
			}
			go w.Run(ctx)

			go func() {
				for batch := range w.C {
					log.Info("inputs changed, rebuilding", "paths", len(batch))
					resolved, next, err := projectTree()
					if err != nil {
						log.Error("rebuild failed, keeping last good tree", "error", err)
						continue
					}
					hot.Swap(next)
					if err := publish(resolved, ctl); err != nil {
						log.Error("publish failed", "error", err)
					}
				}
			}()
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Println("Shutting down.")
		return nil
	},
}

// projectTree resolves the sidebar and projects it as a node tree backed
// by the docs directory.
func projectTree() (api.Sidebar, *tree.Store, error) {
	resolved, err := resolveSidebar()
	if err != nil {
		return api.Sidebar{}, nil, err
	}
	store, err := tree.Project(resolved, tree.DirPages{FS: osfs.New(docsDir)})
	if err != nil {
		return api.Sidebar{}, nil, err
	}
	return resolved, store, nil
}

// publish writes the artifact and bumps the control file generation.
func publish(resolved api.Sidebar, ctl *control.Controller) error {
	if err := writeArtifact(resolved, serveOut); err != nil {
		return err
	}
	if ctl == nil {
		return nil
	}
	_, err := ctl.Bump(serveOut)
	return err
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Rebuild and hot swap when inputs change")
	serveCmd.Flags().StringVar(&serveOut, "out", "sidebar.json", "Artifact path written on every rebuild")
	serveCmd.Flags().StringVar(&serveCtlPath, "control", "", "Path to the build-generation control file")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", 200*time.Millisecond, "Watch debounce window")
	rootCmd.AddCommand(serveCmd)
}
