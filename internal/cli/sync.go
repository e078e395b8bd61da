package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	documentscmd "github.com/goliatone/go-doctree/internal/commands/documents"
	"github.com/goliatone/go-doctree/internal/di"
)

var (
	syncPattern   string
	syncRecursive bool
	syncForce     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <directory>",
	Short: "Rebuild every note in a directory",
	Long: `Rebuilds the stored tree of every markdown note under a directory.
Document ids are derived from the project id and each note's relative path,
so repeated syncs update the same documents. Notes that fail to parse are
reported and the remaining notes are still rebuilt.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project id (required)")
	syncCmd.Flags().StringVar(&syncPattern, "pattern", "*.md", "note file name pattern")
	syncCmd.Flags().BoolVarP(&syncRecursive, "recursive", "r", true, "descend into subdirectories")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "rebuild notes even when their content is unchanged")
	_ = syncCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}

	var report *documentscmd.SyncReport
	module, err := openModule(cmd, di.WithCommandOptions(
		documentscmd.WithSyncObserver(func(_ context.Context, r *documentscmd.SyncReport) {
			report = r
		}),
	))
	if err != nil {
		return err
	}
	defer module.Close()

	cmd.Printf("Synchronising %s...\n", args[0])
	execErr := module.Commands().Sync.Execute(cmd.Context(), documentscmd.SyncDirectoryCommand{
		ProjectID: projectID,
		Directory: args[0],
		Pattern:   syncPattern,
		Recursive: syncRecursive,
		Force:     syncForce,
	})
	if report != nil {
		for i, path := range report.Paths {
			result := report.Rebuilt[i]
			cmd.Printf("  %s -> %s (%d nodes, %d tags)\n", path, result.DocumentID, result.NodeCount, result.TagsInserted)
		}
		cmd.Printf("Rebuilt %d note(s).\n", len(report.Rebuilt))
		if len(report.Unchanged) > 0 {
			cmd.Printf("Skipped %d unchanged note(s).\n", len(report.Unchanged))
		}
	}
	if execErr != nil {
		return fmt.Errorf("sync failed: %w", execErr)
	}
	return nil
}
