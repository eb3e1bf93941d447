// Command supportbot runs the Telegram support-ticket bot.
package main

import (
	"fmt"
	"log"

	"github.com/m3rciful/supportbot/core/bootstrap"
	corecmd "github.com/m3rciful/supportbot/core/cmd"
	tg "github.com/m3rciful/supportbot/core/telegram"
	"github.com/m3rciful/supportbot/internal/bot"
	"github.com/m3rciful/supportbot/migrations"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar: "CONFIG_PATH",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func bootstrapApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*bot.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	telebot, err := tg.NewBot(cfg.CoreConfig())
	if err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}
	return bot.New(bot.Options{Config: cfg, Bot: telebot, DB: res.DB})
}
