package main

import (
	"github.com/Speshl/gorrc_rover/internal/app"
	"github.com/Speshl/gorrc_rover/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.GetConfig()
	config.SetupLogging(cfg)

	app := app.NewApp(cfg)

	err := app.Start()
	if err != nil {
		log.Fatalf("rover shutdown with error: %s", err.Error())
	}
	log.Println("rover shutdown successfully")
}
