package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	pkgconfig "github.com/starford/quire/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Build(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
		if err := cfg.App.HTTP.Validate(); err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
	}
	if cmd.Bool("no-watch") {
		cfg.Preview.Watch = false
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "quire",
		Usage: "Compile a tree of Markdown notes into a static site with anchored headings, callouts and maths",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "quire.yaml",
				Value:       "quire.yaml",
				Sources:     cli.EnvVars("QUIRE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Compile the content tree into the output directory",
				Action: build,
			},
			{
				Name:   "serve",
				Usage:  "Build, then serve the site with live reload and the catalog API",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP port (overrides app.http.port)",
					},
					&cli.BoolFlag{
						Name:  "no-watch",
						Usage: "Do not rebuild on file changes",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
