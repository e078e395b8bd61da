package cli

import (
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the hashtags indexed for a project",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project id (required)")
	tagsCmd.Flags().BoolVar(&jsonOutput, "json", false, "print tags as JSON")
	_ = tagsCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, _ []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}
	module, err := openModule(cmd)
	if err != nil {
		return err
	}
	defer module.Close()

	tags, err := module.Documents().ListTags(cmd.Context(), projectID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), tags)
	}
	if len(tags) == 0 {
		cmd.Println("No tags found.")
		return nil
	}
	cmd.Printf("Tags for project %s:\n\n", projectID)
	for _, tag := range tags {
		cmd.Printf("  #%s\n", tag.TagName)
		cmd.Printf("    Source node: %d\n", tag.SourceNodeID)
	}
	return nil
}
