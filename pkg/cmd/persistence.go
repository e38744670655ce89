// Package cmd provides shared construction helpers for the editor binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/procurehub/floweditor/pkg/persistence"
	"github.com/procurehub/floweditor/pkg/persistence/file"
	"github.com/procurehub/floweditor/pkg/persistence/postgresql"
	"github.com/procurehub/floweditor/pkg/persistence/redis"
)

// NewPersistence selects a storage backend from the database URL scheme:
// postgres://, redis://, or file:// (also the fallback for a bare path).
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch persistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func persistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
