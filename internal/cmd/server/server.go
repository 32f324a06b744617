// Package server parses engine server configuration and launches the MCP
// diagnostics service over stdio.
package server

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sagaforge/engine/internal/content"
	"github.com/sagaforge/engine/internal/content/storage/sqlite"
	mcpservice "github.com/sagaforge/engine/internal/mcp/service"
	"github.com/sagaforge/engine/internal/platform/config"
	"github.com/sagaforge/engine/internal/platform/otel"
	"github.com/sagaforge/engine/internal/rules/engine"
	"github.com/sagaforge/engine/internal/rules/producer"
	"github.com/sagaforge/engine/internal/telemetry"
)

const serviceName = "sagaforge-engine"

// Config holds server command configuration.
type Config struct {
	DBPath       string `env:"SAGAFORGE_DB_PATH" envDefault:"sagaforge.db"`
	OTLPEndpoint string `env:"SAGAFORGE_OTLP_ENDPOINT"`
	SeedContent  bool   `env:"SAGAFORGE_SEED_CONTENT" envDefault:"true"`
}

// ParseConfig parses environment and flags into Config. Flags win over
// environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite content database")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP trace endpoint (empty disables tracing)")
	fs.BoolVar(&cfg.SeedContent, "seed", cfg.SeedContent, "Install default content definitions on startup")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store, assembles the resolution engine, and serves MCP on
// stdio until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	if cfg.SeedContent {
		if err := store.Seed(ctx, content.DefaultDefinitions()); err != nil {
			return fmt.Errorf("seed content: %w", err)
		}
	}

	eng := engine.New(Producers(store), telemetry.NewEmitter(store))

	server, err := mcpservice.NewServer(store, eng)
	if err != nil {
		return fmt.Errorf("build MCP server: %w", err)
	}

	log.Printf("serving MCP on stdio (db=%s)", cfg.DBPath)
	return server.Serve(ctx)
}

// Producers returns the full producer set in merge order: definition-backed
// producers first, then derived state, then ad-hoc edits.
func Producers(library content.Library) []producer.Producer {
	return []producer.Producer{
		producer.NewEquipment(library),
		producer.NewTalents(library),
		producer.NewSpecies(library),
		producer.NewConditions(library),
		producer.NewInstalledSystems(library),
		producer.NewEncumbrance(),
		producer.NewAdHoc(),
	}
}
