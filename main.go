package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"asistente/cmd"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Configuration and logging are set up by the root command
	cmd.Execute()
}
