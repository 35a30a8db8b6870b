package main

import (
	"log"

	"github.com/aussiebroadwan/ltcms/internal/auth/app"
)

func main() {
	cfg := app.LoadConfig()

	// Secret validation happens here, before anything listens.
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
