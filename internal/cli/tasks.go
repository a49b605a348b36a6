package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/tasks/internal/model"
)

var errTitleRequired = errors.New("title is required")

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (c *cli) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller()
			defer ctrl.Close()

			if err := ctrl.Run(cmd.Context(), ctrl.Initialize()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tasks := ctrl.Tasks()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			fmt.Fprintf(out, "%-6s %s\n", "ID", "TITLE")
			for _, t := range tasks {
				fmt.Fprintf(out, "%-6d %s\n", t.ID, t.Title)
			}
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller()
			defer ctrl.Close()

			ctrl.SetInput(strings.Join(args, " "))
			op := ctrl.AddTask(ctrl.Input())
			if op == nil {
				return errTitleRequired
			}
			if err := ctrl.Run(cmd.Context(), op); err != nil {
				return err
			}

			tasks := ctrl.Tasks()
			created := tasks[len(tasks)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d: %s\n", created.ID, created.Title)
			return nil
		},
	}
}

func (c *cli) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title...>",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctrl := c.controller()
			defer ctrl.Close()

			if err := ctrl.Run(cmd.Context(), ctrl.Initialize()); err != nil {
				return err
			}

			// Unknown ids are still sent; the server decides.
			task := model.Task{ID: id}
			if i := model.IndexOf(ctrl.Tasks(), id); i >= 0 {
				task = ctrl.Tasks()[i]
			}
			ctrl.BeginEdit(task)
			ctrl.UpdateEditingTitle(strings.Join(args[1:], " "))

			op := ctrl.CommitEdit()
			if op == nil {
				return errTitleRequired
			}
			if err := ctrl.Run(cmd.Context(), op); err != nil {
				return err
			}

			title, _ := model.NormalizeTitle(strings.Join(args[1:], " "))
			if i := model.IndexOf(ctrl.Tasks(), id); i >= 0 {
				title = ctrl.Tasks()[i].Title
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d: %s\n", id, title)
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its comments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctrl := c.controller()
			defer ctrl.Close()

			if err := ctrl.Run(cmd.Context(), ctrl.DeleteTask(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}
