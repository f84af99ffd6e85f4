package main

import (
	"flag"
	"log"

	"github.com/futig/rag-backend/internal/builder"
)

func main() {
	environment := flag.String("env", "local", "environment to run in (local, prod)")
	flag.Parse()

	app, err := builder.Build(*environment)
	if err != nil {
		log.Fatal("Failed to build application:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Application error:", err)
	}
}
