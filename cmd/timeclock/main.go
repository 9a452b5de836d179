package main

import (
	"flag"
	"fmt"
	"os"
	"timeclock/internal/di"
	"timeclock/internal/structures"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "timeclock: %s\n", err)
		os.Exit(1)
	}
}
