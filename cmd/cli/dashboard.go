package main

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
)

func dashboardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.DashboardResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/dashboard", nil, "", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func projectionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projections",
		Short: "Show projection cursors and engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.ProjectionStatusResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/projections", nil, "", &out); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPOSITION\tUPDATED")
			for _, p := range out.Projections {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, p.Position, p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			if out.Engine != nil {
				fmt.Fprintf(tw, "engine %s is %s at %d\n", out.Engine.Name, out.Engine.State, out.Engine.Position)
			}
			return tw.Flush()
		},
	}
}
