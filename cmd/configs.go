package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

func newConfigsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Inspect stored configurations",
	}
	cmd.AddCommand(newConfigsListCmd(opts), newConfigsShowCmd(opts))
	return cmd
}

func newConfigsListCmd(opts *rootOptions) *cobra.Command {
	var q domain.ListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored configurations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.Configs.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			printConfigPage(cmd.OutOrStdout(), page)
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "filter on name, image or tag")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 0, "rows per page (default list.default_page_size)")
	return cmd
}

func newConfigsShowCmd(opts *rootOptions) *cobra.Command {
	var mode modeValue

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the docker run command of a stored configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Configs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dockerrun.Render(rec.Config, mode.mode))
			return nil
		},
	}
	cmd.Flags().Var(&mode, "mode", "output layout")
	return cmd
}

func printConfigPage(w io.Writer, page domain.ConfigPage) {
	if len(page.Items) == 0 {
		printHint(w, "No configurations found.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "NAME", "IMAGE", "UPDATED")

	for _, rec := range page.Items {
		t.Row(rec.ID, rec.Name(), rec.Config.ImageRef(), rec.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(w, t.Render())
	printHint(w, fmt.Sprintf("page %d of %d, %d total", page.Page, page.TotalPages, page.Total))
}
