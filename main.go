package main

import (
	"embed"
	"log"

	"github.com/guiibarros/nlw-ai/internal/bootstrap"
	"github.com/guiibarros/nlw-ai/internal/logging"
)

//go:embed frontend/index.html
var appAssets embed.FS

func main() {
	logging.Init(logging.DefaultConfig())

	app, err := bootstrap.NewWithAssets(appAssets)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
