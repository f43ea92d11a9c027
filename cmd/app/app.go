package main

import (
	"os"

	"github.com/DRSN-tech/beauty-backend/internal/app"
	config "github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
)

//	@title			Beauty Recognition API
//	@version		1.0
//	@description	Распознавание цвета кожи, волос и бровей по фото и подбор косметики.
//	@BasePath		/api/v1
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
