package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/deadredux/internal/storage"
	"github.com/rewired-gh/deadredux/internal/telegram"
)

func newAnnounceCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "announce [date]",
		Short: "Post the pick for a date to Telegram unless already posted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config
			if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
				return errors.New("telegram.bot_token and telegram.chat_id are required")
			}

			store, err := storage.New(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			svc, _, err := app.service(app.relistenClient(), store)
			if err != nil {
				return err
			}

			client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
			if err != nil {
				return err
			}

			date := svc.Today()
			if len(args) == 1 {
				date = args[0]
			}

			announcer := telegram.NewAnnouncer(client, store, svc, app.links().Page, cfg.Telegram.CheckInterval)
			sent, err := announcer.AnnounceDate(cmd.Context(), date)
			if err != nil {
				return err
			}

			if sent {
				fmt.Fprintf(cmd.OutOrStdout(), "Announced %s\n", date)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already announced\n", date)
			}
			return nil
		},
	}
}
