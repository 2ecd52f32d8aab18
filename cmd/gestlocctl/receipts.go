package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Madofly35/GestLoc/internal/app"
	"github.com/Madofly35/GestLoc/internal/config"
)

func receiptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Maintain stored rent receipts",
	}

	cmd.AddCommand(receiptsSyncCmd(), receiptsPurgeCmd())

	return cmd
}

func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func receiptsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Generate the missing receipts of paid payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app.App) error {
				report, err := a.Receipts.Sync(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d receipt(s), %d failure(s).\n", report.Generated, report.Failed)

				if err != nil {
					return err
				}

				if report.Failed > 0 {
					return fmt.Errorf("%d receipt(s) could not be generated", report.Failed)
				}

				return nil
			})
		},
	}
}

func receiptsPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete revoked receipts and their stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app.App) error {
				n, err := a.Receipts.PurgeRevoked(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d revoked receipt(s).\n", n)

				return nil
			})
		},
	}
}
