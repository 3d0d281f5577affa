package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kharcha/internal/backend"
	"kharcha/internal/cli"
	"kharcha/internal/core"
	"kharcha/internal/services"
)

// withService runs fn against a freshly seeded store. Read commands never
// publish events.
func withService(ctx context.Context, opts *rootOptions, fn func(*services.ExpenseService) error) error {
	bcfg, err := backend.FromAppConfig(opts.cfg)
	if err != nil {
		return err
	}
	bcfg.AMQPURL = ""

	res, err := backend.NewFactory(opts.logger).Create(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() { _ = res.Cleanup() }()

	return fn(newService(opts.cfg, services.Options{Logger: opts.logger}, res))
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var search, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := core.ParseStatusFilter(status)
			if err != nil {
				return fmt.Errorf("--status %q: %w", status, err)
			}
			return withService(cmd.Context(), opts, func(svc *services.ExpenseService) error {
				expenses, err := svc.Expenses(cmd.Context(), core.Query{Search: search, Status: filter})
				if err != nil {
					return err
				}
				return cli.RenderExpenses(cmd.OutOrStdout(), expenses)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match title or description, ignoring case")
	cmd.Flags().StringVar(&status, "status", "all", "all, pending, approved or rejected")
	cmd.Flags().String("backend", "", "data backend: memory or sqlite")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, func(svc *services.ExpenseService) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return cli.RenderStats(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "report <summary|approvals|schedule>",
		Short:     "Print one of the reports",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.ReportSummary), string(core.ReportApprovals), string(core.ReportSchedule)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseReportKind(args[0])
			if err != nil {
				return fmt.Errorf("report %q: %w", args[0], err)
			}
			return withService(cmd.Context(), opts, func(svc *services.ExpenseService) error {
				report, err := svc.Report(cmd.Context(), kind)
				if err != nil {
					return err
				}
				return cli.RenderReport(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "kharcha", version)
		},
	}
}
