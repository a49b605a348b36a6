package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) commentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments <task-id>",
		Short: "List a task's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}

			comments, err := c.client.ListComments(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(comments) == 0 {
				fmt.Fprintln(out, "No comments.")
				return nil
			}
			for _, cm := range comments {
				fmt.Fprintf(out, "%-6d %s  %s\n", cm.ID, cm.CreatedAt.Local().Format("2006-01-02 15:04"), cm.Text)
			}
			return nil
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <task-id> <text...>",
		Short: "Add a comment to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("comment text is required")
			}

			cm, err := c.client.AddComment(cmd.Context(), taskID, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment #%d to task #%d\n", cm.ID, taskID)
			return nil
		},
	}
}
