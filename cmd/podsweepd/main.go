package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"podsweep/internal/config"
	"podsweep/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	err = daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel: *logLevel,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "podsweepd: %v\n", err)
		os.Exit(1)
	}
}
