package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"memcortex/pkg/config"
	"memcortex/pkg/logger"
)

const schemaVersion = "graph_schema_v1"

func main() {
	force := flag.Bool("force", false, "Force migration even if already applied")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Neo4j schema migration...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	if !*force {
		applied, err := checkMigrationApplied(ctx, driver)
		if err != nil {
			log.Fatal("Failed to check migration status", zap.Error(err))
		}
		if applied {
			log.Info("Migration already applied. Use -force to reapply.")
			os.Exit(0)
		}
	}

	if err := runMigrations(ctx, driver, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	if err := markMigrationApplied(ctx, driver); err != nil {
		log.Warn("Failed to mark migration as applied", zap.Error(err))
	}

	log.Info("Migration completed successfully!")
}

func checkMigrationApplied(ctx context.Context, driver neo4j.DriverWithContext) (bool, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH (m:Migration {version: $version}) RETURN m.applied_at AS applied_at",
		map[string]any{"version": schemaVersion})
	if err != nil {
		return false, err
	}
	return result.Next(ctx), nil
}

func markMigrationApplied(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (m:Migration {version: $version})
		SET m.applied_at = datetime(),
		    m.description = 'Base graph schema: node key uniqueness and memory lookup indexes'
	`
	_, err := session.Run(ctx, query, map[string]any{"version": schemaVersion})
	return err
}

func runMigrations(ctx context.Context, driver neo4j.DriverWithContext, log *zap.Logger) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// Every node kind merges on its key property, so each gets a
	// uniqueness constraint; the indexes back the property-scan reads.
	statements := []struct {
		name  string
		query string
	}{
		{"memory key unique", "CREATE CONSTRAINT memory_key_unique IF NOT EXISTS FOR (m:Memory) REQUIRE m.key IS UNIQUE"},
		{"component key unique", "CREATE CONSTRAINT component_key_unique IF NOT EXISTS FOR (c:Component) REQUIRE c.key IS UNIQUE"},
		{"decision key unique", "CREATE CONSTRAINT decision_key_unique IF NOT EXISTS FOR (d:Decision) REQUIRE d.key IS UNIQUE"},
		{"argument key unique", "CREATE CONSTRAINT argument_key_unique IF NOT EXISTS FOR (a:Argument) REQUIRE a.key IS UNIQUE"},
		{"validation key unique", "CREATE CONSTRAINT validation_key_unique IF NOT EXISTS FOR (v:Validation) REQUIRE v.key IS UNIQUE"},
		{"memory user index", "CREATE INDEX memory_user_id IF NOT EXISTS FOR (m:Memory) ON (m.user_id)"},
		{"memory topic index", "CREATE INDEX memory_topic IF NOT EXISTS FOR (m:Memory) ON (m.topic)"},
		{"memory created index", "CREATE INDEX memory_created IF NOT EXISTS FOR (m:Memory) ON (m.created)"},
		{"decision text index", "CREATE INDEX decision_text IF NOT EXISTS FOR (d:Decision) ON (d.text)"},
	}

	for _, stmt := range statements {
		log.Info("Applying migration statement", zap.String("name", stmt.name))
		if _, err := session.Run(ctx, stmt.query, nil); err != nil {
			return fmt.Errorf("statement %q: %w", stmt.name, err)
		}
	}
	return nil
}
