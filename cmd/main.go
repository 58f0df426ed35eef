package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"estate-chat/internal/config"
)

// app carries what every subcommand shares. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:   "estate-chat",
		Short: "Real estate legal assistant chat endpoint and terminal client",
		Long: `estate-chat serves a chat endpoint that relays a conversation to a hosted
language model, and ships a terminal client hosting the assistant widget.

Run with no subcommand inside AWS Lambda to serve API Gateway events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadDotEnv(envFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(os.LookupEnv)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Logger(os.Stderr)
			if loaded != "" {
				a.logger.Debug("loaded env file", "path", loaded)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
				return runLambda(cmd.Context(), a)
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of a dotenv file to load if present")

	root.AddCommand(newServeCmd(a), newLambdaCmd(a), newChatCmd(a))
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "estate-chat: %v\n", err)
		os.Exit(1)
	}
}
