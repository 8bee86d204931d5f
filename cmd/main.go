package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/internal/app"
	"github.com/Intervyou-site/intervyou/internal/auth"
	"github.com/Intervyou-site/intervyou/internal/config"
	"github.com/Intervyou-site/intervyou/internal/logger"
)

const tokenTTL = 24 * time.Hour

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intervyou",
		Short:         "Behavioral analysis of recorded and live interview answers",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newValidateCmd(), newTokenCmd())
	return root
}

// setup loads configuration and builds the logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

func newAnalyzeCmd() *cobra.Command {
	var transcriptFile string
	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Run the full analysis and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			transcript := ""
			if transcriptFile != "" {
				data, err := os.ReadFile(transcriptFile)
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
				transcript = string(data)
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			result, err := a.Analyzer.Analyze(ctx, args[0], transcript)
			if result != nil {
				if encErr := printJSON(cmd.OutOrStdout(), result); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&transcriptFile, "transcript", "", "file holding the answer transcript")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <video>",
		Short: "Run only the quality gate and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			report, err := a.Analyzer.Validate(ctx, args[0])
			if encErr := printJSON(cmd.OutOrStdout(), report); encErr != nil {
				return encErr
			}
			return err
		},
	}
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for the realtime websocket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens, err := auth.NewTokenIssuer(cfg.Server.JWTSecret, tokenTTL)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateUserToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
