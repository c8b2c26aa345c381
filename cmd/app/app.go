package main

import (
	"os"

	"github.com/modlrn/go-backend/internal/app"
	config "github.com/modlrn/go-backend/internal/cfg"
	"github.com/modlrn/go-backend/pkg/logger"
)

//	@title						modLRN API
//	@version					1.0
//	@description				Adaptive learning backend: accounts, face login, questions, results and analytics.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
