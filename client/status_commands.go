package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show the server's dependency health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
			defer cancel()

			report, err := client.Health(reqCtx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			names := make([]string, 0, len(report.Services))
			for name := range report.Services {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server: %s (%s)\n", report.Status, cfg.Client.BaseURL)
			if len(names) > 0 {
				fmt.Fprintln(out, renderHealth(report, names))
			}
			if report.Status != models.HealthHealthy {
				return fmt.Errorf("server is %s", report.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Request a short-lived access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
			defer cancel()

			token, err := client.IssueToken(reqCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token.Token, token.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}
