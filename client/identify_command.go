package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phambaophuc/ecovision/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var imageURL string
	var timeout time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Identify the species in a photo",
		Long: `Send a local image or an image URL to the EcoVision server and print
the common name, scientific name, habitat and conservation status.

Examples:
  ecovision identify --file roble.jpg
  ecovision identify --url https://example.com/roble.jpg --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = cfg.Client.Timeout
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			logger := ctx.loggerValue()

			s := session.New(client, client.TokenSource(), logger,
				session.WithTimeout(timeout),
				session.WithObserver(func(state session.RequestState) {
					if state.Status == session.StatusLoading && !jsonOutput {
						fmt.Fprintln(cmd.ErrOrStderr(), "Identificando...")
					}
				}),
			)

			if err := s.SelectFilePath(strings.TrimSpace(filePath)); err != nil {
				return err
			}
			if imageURL != "" {
				s.SetURL(imageURL)
			}
			if !s.CanSubmit() {
				return errors.New("no image selected, pass --file or --url")
			}
			logger.Debug("submitting identification", zap.String("input", s.CurrentInput().Kind()))

			pending := s.Submit(cmd.Context())
			state, err := pending.Wait(cmd.Context())
			if err != nil {
				return err
			}
			return printState(cmd, state, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to a local image")
	cmd.Flags().StringVarP(&imageURL, "url", "u", "", "URL of an image")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (defaults to CLIENT_TIMEOUT)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")

	return cmd
}

func printState(cmd *cobra.Command, state session.RequestState, jsonOutput bool) error {
	switch state.Status {
	case session.StatusSucceeded:
		if jsonOutput {
			return writeJSON(cmd, state.Result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderResult(state.Result))
		return nil
	case session.StatusFailed:
		if errors.Is(state.Err, context.Canceled) {
			return state.Err
		}
		return fmt.Errorf("no se pudo identificar la imagen: %w", state.Err)
	default:
		return fmt.Errorf("identification ended in state %s", state.Status)
	}
}
