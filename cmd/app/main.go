package main

import (
	"log"

	"github.com/guiibarros/nlw-ai/internal/bootstrap"
	"github.com/guiibarros/nlw-ai/internal/logging"
)

func main() {
	logging.Init(logging.DefaultConfig())

	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
