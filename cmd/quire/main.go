package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mithrel/quire/internal/cli"
)

func main() {
	// QUIRE_* variables may come from a local .env; a missing file is fine
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "quire:", err)
		os.Exit(1)
	}
}
