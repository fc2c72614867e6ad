package main

import (
	"fmt"
	"os"

	"timeledger/internal/api"
	"timeledger/internal/cli"
	"timeledger/internal/config"
	"timeledger/internal/repository/sqlite"
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.LoadFromEnvironment(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		os.Exit(1)
	}

	loc, err := cfg.GetLocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Database.Dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database directory: %v\n", err)
		os.Exit(1)
	}

	repo, err := sqlite.New(cfg.GetDatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	apiInstance := api.New(repo, loc)
	defer apiInstance.Close()

	root := cli.NewRootCommand(apiInstance, cfg, loc)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
