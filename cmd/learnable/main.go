package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/learnable-ai/companion/internal/config"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/urfave/cli/v2"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "learnable",
		Usage:   "turn notes, recordings and links into summaries, mind maps, quizzes and flashcards",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the XML config file (created on first run)",
				Value:   defaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "log-mode",
				Usage:   "dev or prod; overrides the config file",
				EnvVars: []string{"LOG_MODE"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			generateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultConfigPath places the config next to the executable, like a desktop tool.
func defaultConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "learnable.config.xml"
	}
	return filepath.Join(filepath.Dir(exePath), "learnable.config.xml")
}

// loadConfig reads the config and installs the global logger.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if mode := c.String("log-mode"); mode != "" {
		cfg.Advanced.LogMode = mode
	}
	if err := logger.Init(cfg.Advanced.LogMode); err != nil {
		return nil, err
	}
	return cfg, nil
}
