// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/nibrashq/nibras/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the stores rely on. Index creation is
// idempotent, so this runs unconditionally on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.Ensure(ctx, deps.NibrasMongoDatabase, logger)
}
