// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/nibrashq/nibras/internal/app/resources"
	notificationstore "github.com/nibrashq/nibras/internal/app/store/notifications"
	"github.com/nibrashq/nibras/internal/app/system/metrics"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	metrics.Init()

	// The nav bar's unread badge pulls its count through this hook so
	// viewdata does not depend on the store packages.
	notifs := notificationstore.New(deps.NibrasMongoDatabase)
	viewdata.SetUnreadCounter(func(ctx context.Context, uid string) int64 {
		n, err := notifs.CountUnread(ctx, uid)
		if err != nil {
			logger.Debug("unread badge count failed", zap.Error(err), zap.String("uid", uid))
			return 0
		}
		return n
	})

	return nil
}
