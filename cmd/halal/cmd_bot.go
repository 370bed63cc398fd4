package main

import (
	"fmt"

	"halal_finance/internal/bot"
	"halal_finance/internal/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// botCmd runs the Telegram command listener
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot until SIGINT or SIGTERM.

Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID. Only the configured
chat is answered.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, log)
	if err != nil {
		return err
	}

	src, fileSrc, err := ratesSource()
	if err != nil {
		return err
	}
	b := bot.New(src, cfg.ScreeningPolicy(), directory(), log)
	log.Info("Telegram bot starting", zap.Int64("chat_id", client.ChatID()), zap.String("version", cfg.Version))

	g, ctx := errgroup.WithContext(cmd.Context())
	watchRates(ctx, g, fileSrc)

	g.Go(func() error {
		if err := client.Notify(ctx, fmt.Sprintf("🕌 Halal Finance bot %s online. Send /help.", cfg.Version)); err != nil {
			log.Warn("Startup notification failed", zap.Error(err))
		}
		return client.Listen(ctx, b.HandleCommand)
	})

	return g.Wait()
}
