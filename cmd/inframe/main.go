package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/inframe/internal/app"
)

func main() {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("❌ failed to load .env: %v", err)
	}

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ inframe failed: %v", err)
	}
}
