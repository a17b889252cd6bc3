package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/database"
	"github.com/aristath/qdash/internal/kvstore"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens state.db, applies its schema and creates the kv
// repository on top of it
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	stateDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "state.db"),
		Profile: database.ProfileStandard,
		Name:    "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}

	if err := stateDB.Migrate(); err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	container.StateDB = stateDB
	container.KV = kvstore.NewRepository(stateDB.Conn())

	log.Info().Str("path", stateDB.Path()).Msg("State database initialized")
	return container, nil
}
