package main

import (
	"log"

	"github.com/m3rciful/shopbot/core/cmd"
	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar: "CONFIG_PATH",
		// No default path: container deploys configure via env only and
		// CONFIG_PATH opts into a YAML file.
		Bootstrap: func(cfg *coreconfig.Config) (cmd.TelegramApp, error) {
			return bot.NewApp(cfg)
		},
	})
	if err != nil {
		log.Fatalf("shopbot: %v", err)
	}
}
