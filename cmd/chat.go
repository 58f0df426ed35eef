package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"estate-chat/internal/chatclient"
	"estate-chat/internal/console"
	"estate-chat/internal/render"
	"estate-chat/internal/tui"
	"estate-chat/internal/widget"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		plain    bool
		proxyURL string
		logFile  string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the assistant widget in the terminal",
		Long: `Open the real estate legal assistant against a running chat endpoint.

By default a full-screen widget starts closed; press ctrl+o to open it.
With --plain the session is line oriented. Type 'exit' to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if proxyURL == "" {
				proxyURL = a.cfg.ProxyURL
			}
			client, err := chatclient.New(proxyURL)
			if err != nil {
				return err
			}

			// The full-screen program owns the terminal, so logs go to a file
			// or nowhere.
			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer func() { _ = f.Close() }()
				logger = a.cfg.Logger(f)
			}

			if !plain {
				return tui.Run(cmd.Context(), client, logger)
			}

			f, err := render.NewTerminal(80)
			if err != nil {
				return err
			}
			w, err := widget.New(client, widget.WithLogger(logger), widget.WithFormatter(f))
			if err != nil {
				return err
			}
			s, err := console.New(w, os.Stdin, os.Stdout, console.WithStatus(os.Stderr))
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Use a line-oriented session instead of the full-screen widget")
	cmd.Flags().StringVar(&proxyURL, "proxy-url", "", "Chat endpoint URL (defaults to CHAT_PROXY_URL)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write client logs to this file")
	return cmd
}
