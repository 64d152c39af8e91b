// Package game parses game command flags and starts the service runtime.
package game

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/fableforge/fableforge/internal/platform/cmd"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
	"github.com/fableforge/fableforge/internal/services/game/server"
)

// Narrator provider names accepted by the game command.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config holds game command configuration.
type Config struct {
	Port   int    `env:"FABLEFORGE_GAME_PORT" envDefault:"8080"`
	Addr   string `env:"FABLEFORGE_GAME_ADDR"`
	DBPath string `env:"FABLEFORGE_GAME_DB_PATH" envDefault:"fableforge.db"`

	NarratorProvider string `env:"FABLEFORGE_NARRATOR_PROVIDER" envDefault:"ollama"`
	NarratorModel    string `env:"FABLEFORGE_NARRATOR_MODEL" envDefault:"game_master"`
	OllamaURL        string `env:"FABLEFORGE_OLLAMA_URL" envDefault:"http://localhost:11434"`
	GeminiAPIKey     string `env:"FABLEFORGE_GEMINI_API_KEY"`

	// NatsURL enables turn event publishing when set.
	NatsURL string `env:"FABLEFORGE_NATS_URL"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	fs.StringVar(&cfg.NarratorProvider, "narrator", cfg.NarratorProvider, "Narrator provider (ollama or gemini)")
	fs.StringVar(&cfg.NarratorModel, "model", cfg.NarratorModel, "Narrator model name")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(context.Context) error {
		chat, closeNarrator, err := buildNarrator(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeNarrator()

		var publisher *events.Publisher
		if cfg.NatsURL != "" {
			publisher, err = events.Connect(cfg.NatsURL)
			if err != nil {
				return err
			}
		}

		return server.Run(ctx, server.Options{
			Addr:     cfg.Addr,
			Port:     cfg.Port,
			DBPath:   cfg.DBPath,
			Narrator: chat,
			Events:   publisher,
		})
	})
}

func buildNarrator(ctx context.Context, cfg Config) (narrator.Client, func(), error) {
	switch cfg.NarratorProvider {
	case ProviderOllama:
		chat, err := narrator.NewOllama(narrator.OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.NarratorModel})
		if err != nil {
			return nil, nil, err
		}
		return chat, func() {}, nil
	case ProviderGemini:
		chat, err := narrator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.NarratorModel)
		if err != nil {
			return nil, nil, err
		}
		return chat, func() {
			if err := chat.Close(); err != nil {
				log.Printf("close narrator: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown narrator provider %q", cfg.NarratorProvider)
	}
}
