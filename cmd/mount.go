package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/winfsp/cgofuse/fuse"

	"github.com/agentic-research/sidetree/internal/fsmount"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount the resolved sidebar tree with FUSE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountPoint := args[0]

		_, store, err := projectTree()
		if err != nil {
			return err
		}

		host := fuse.NewFileSystemHost(fsmount.NewNavTreeFS(store))
		fmt.Printf("Mounting sidebar tree at %s (using fuse-t/cgofuse)...\n", mountPoint)

		// Read-only; own the mount (critical for fuse-t/NFS).
		opts := []string{
			"-o", "ro",
			"-o", fmt.Sprintf("uid=%d", os.Getuid()),
			"-o", fmt.Sprintf("gid=%d", os.Getgid()),
		}
		if !host.Mount(mountPoint, opts) {
			return fmt.Errorf("mount failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
}
