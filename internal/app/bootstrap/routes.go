// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	announcementsfeature "github.com/nibrashq/nibras/internal/app/features/announcements"
	dashboardfeature "github.com/nibrashq/nibras/internal/app/features/dashboard"
	employeesfeature "github.com/nibrashq/nibras/internal/app/features/employees"
	errorsfeature "github.com/nibrashq/nibras/internal/app/features/errors"
	healthfeature "github.com/nibrashq/nibras/internal/app/features/health"
	homefeature "github.com/nibrashq/nibras/internal/app/features/home"
	loginfeature "github.com/nibrashq/nibras/internal/app/features/login"
	notificationsfeature "github.com/nibrashq/nibras/internal/app/features/notifications"
	notifyapifeature "github.com/nibrashq/nibras/internal/app/features/notifyapi"
	requestsfeature "github.com/nibrashq/nibras/internal/app/features/requests"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/nibrashq/nibras/internal/app/system/metrics"
	"github.com/nibrashq/nibras/internal/app/system/notify"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	// Each feature's views package registers its template set on import.
	_ "github.com/nibrashq/nibras/internal/app/features/announcements/views"
	_ "github.com/nibrashq/nibras/internal/app/features/dashboard/views"
	_ "github.com/nibrashq/nibras/internal/app/features/employees/views"
	_ "github.com/nibrashq/nibras/internal/app/features/errors/views"
	_ "github.com/nibrashq/nibras/internal/app/features/home/views"
	_ "github.com/nibrashq/nibras/internal/app/features/login/views"
	_ "github.com/nibrashq/nibras/internal/app/features/notifications/views"
	_ "github.com/nibrashq/nibras/internal/app/features/requests/views"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It creates the session manager,
// boots the template engine, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data
	// on each request. This ensures role changes and disabled accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.NibrasMongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Shared plumbing: the audience resolver feeds the dispatcher, and
	// the workflow policy governs what finished requests still accept.
	users := userstore.New(deps.NibrasMongoDatabase)
	resolver := audience.NewResolver(users, appCfg.StaffTag)
	policy := workflow.Policy{AllowTerminalActions: appCfg.WorkflowAllowReopen}

	notifHandler := notificationsfeature.NewHandler(deps.NibrasMongoDatabase, errLog, logger)
	dispatcher := notify.NewDispatcher(resolver, notifHandler.GetStore(), logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NibrasMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.NibrasMongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Post("/logout", loginHandler.Logout)

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Dashboard
	dashboardHandler := dashboardfeature.NewHandler(deps.NibrasMongoDatabase, policy, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Announcements
	annHandler := announcementsfeature.NewHandler(deps.NibrasMongoDatabase, dispatcher, errLog, logger)
	r.Mount("/announcements", announcementsfeature.Routes(annHandler, sessionMgr))

	// Internal requests
	reqHandler := requestsfeature.NewHandler(deps.NibrasMongoDatabase, policy, dispatcher, errLog, logger)
	r.Mount("/requests", requestsfeature.Routes(reqHandler, sessionMgr))

	// Notifications inbox
	r.Mount("/notifications", notificationsfeature.Routes(notifHandler, sessionMgr))

	// Employee directory
	empHandler := employeesfeature.NewHandler(deps.NibrasMongoDatabase, errLog, logger)
	r.Mount("/employees", employeesfeature.Routes(empHandler, sessionMgr))

	// Internal notify API for trusted backend jobs. Disabled when no
	// shared secret is configured.
	if appCfg.NotifyJWTSecret != "" {
		apiHandler := notifyapifeature.NewHandler(appCfg.NotifyJWTSecret, reqHandler.GetStore(), dispatcher, logger)
		r.Mount("/api", notifyapifeature.Routes(apiHandler))
	}

	return r, nil
}
