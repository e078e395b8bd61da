package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-doctree"
	documentscmd "github.com/goliatone/go-doctree/internal/commands/documents"
	"github.com/goliatone/go-doctree/internal/di"
	engine "github.com/goliatone/go-doctree/internal/doctree"
)

var (
	projectFlag  string
	documentFlag string
	jsonOutput   bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <file>",
	Short: "Parse a note and replace its stored tree",
	Long: `Parses a markdown file and atomically replaces the stored tree of the
document. The document id defaults to one derived from the project id and
the file path.`,
	Args: cobra.ExactArgs(1),
	RunE: runRebuild,
}

var showCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Print a stored document tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Remove a stored document tree and its tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Parse a note without storing it",
	Long:  `Parses a markdown file, or stdin when no file or "-" is given, and prints the tree and tag candidates.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPreview,
}

func init() {
	rebuildCmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project id (required)")
	rebuildCmd.Flags().StringVarP(&documentFlag, "document", "d", "", "document id, derived from the path when empty")
	_ = rebuildCmd.MarkFlagRequired("project")

	showCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the tree as JSON")
	previewCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the tree as JSON")

	rootCmd.AddCommand(rebuildCmd, showCmd, deleteCmd, previewCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}
	path := filepath.Clean(args[0])
	documentID := doctree.DocumentIDForPath(projectID, filepath.ToSlash(path))
	if documentFlag != "" {
		if documentID, err = parseID("document", documentFlag); err != nil {
			return err
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var result *doctree.RebuildResult
	module, err := openModule(cmd, di.WithCommandOptions(
		documentscmd.WithRebuildObserver(func(_ context.Context, r *doctree.RebuildResult) {
			result = r
		}),
	))
	if err != nil {
		return err
	}
	defer module.Close()

	err = module.Commands().Rebuild.Execute(cmd.Context(), documentscmd.RebuildDocumentCommand{
		DocumentID: documentID,
		ProjectID:  projectID,
		Markdown:   string(source),
	})
	if err != nil {
		return err
	}
	cmd.Printf("Rebuilt %s: %d nodes (%d removed), %d/%d tags inserted.\n",
		documentID, result.NodeCount, result.RemovedNodes, result.TagsInserted, result.TagCandidates)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	documentID, err := parseID("document", args[0])
	if err != nil {
		return err
	}
	module, err := openModule(cmd)
	if err != nil {
		return err
	}
	defer module.Close()

	tree, err := module.Documents().Load(cmd.Context(), documentID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), tree)
	}
	return writeOutline(cmd.OutOrStdout(), tree)
}

func runDelete(cmd *cobra.Command, args []string) error {
	documentID, err := parseID("document", args[0])
	if err != nil {
		return err
	}

	removed := 0
	module, err := openModule(cmd, di.WithCommandOptions(
		documentscmd.WithDeleteObserver(func(_ context.Context, _ uuid.UUID, n int) {
			removed = n
		}),
	))
	if err != nil {
		return err
	}
	defer module.Close()

	if err := module.Commands().Delete.Execute(cmd.Context(), documentscmd.DeleteDocumentTreeCommand{
		DocumentID: documentID,
	}); err != nil {
		return err
	}
	cmd.Printf("Deleted %s: %d nodes removed.\n", documentID, removed)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	var (
		source []byte
		err    error
	)
	if len(args) == 0 || args[0] == "-" {
		source, err = io.ReadAll(cmd.InOrStdin())
	} else {
		source, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	store := engine.NewMemoryStore()
	module, err := openModule(cmd, di.WithRepositories(store, store))
	if err != nil {
		return err
	}
	defer module.Close()

	tree, tags, err := module.Documents().Preview(cmd.Context(), string(source))
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), struct {
			Tree *doctree.Tree          `json:"tree"`
			Tags []doctree.TagCandidate `json:"tags"`
		}{tree, tags})
	}
	if err := writeOutline(cmd.OutOrStdout(), tree); err != nil {
		return err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, "#"+tag.Name)
	}
	cmd.Printf("tags: %s\n", strings.Join(names, " "))
	return nil
}

func parseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", name, value, err)
	}
	return id, nil
}
