package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Mode        string
	Goal        string
	Seed        int64
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMHOME_CONFIG", ""),
		"Path to configuration file, empty uses built-in defaults (env: SEMHOME_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMHOME_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SEMHOME_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMHOME_LOG_FORMAT", "json"),
		"Log format: json, text (env: SEMHOME_LOG_FORMAT)")

	flag.StringVar(&cfg.Mode, "mode",
		getEnv("SEMHOME_MODE", "run"),
		"Mode: run (pipeline + gateway), demo (one sweep and two example compositions), compose (one-off plan) (env: SEMHOME_MODE)")

	flag.StringVar(&cfg.Goal, "goal", "",
		"Composition goal for compose mode")

	flag.Int64Var(&cfg.Seed, "seed",
		getEnvInt64("SEMHOME_SEED", 0),
		"Fixed seed for the reading generator, 0 seeds from the clock (env: SEMHOME_SEED)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	switch cfg.Mode {
	case "run", "demo", "compose":
	default:
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}
	if cfg.Mode == "compose" && cfg.Goal == "" {
		return fmt.Errorf("compose mode requires --goal")
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Smart-Home Semantic Pipeline

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run the pipeline and dashboard gateway
  %s --config=/etc/semhome/config.json

  # One deterministic sweep plus example compositions
  %s --mode=demo --seed=42 --log-format=text

  # Ask for a composition plan from the command line
  %s --mode=compose --goal="reduce energy use overnight"

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
