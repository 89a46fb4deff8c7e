// internal/app/features/requests/handler.go
package requests

import (
	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/notify"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all Internal Requests handlers.
type Handler struct {
	DB         *mongo.Database
	Store      *requeststore.Store
	Users      *userstore.Store
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs an Internal Requests Handler.
func NewHandler(db *mongo.Database, policy workflow.Policy, dispatcher *notify.Dispatcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Store:      requeststore.New(db, policy),
		Users:      userstore.New(db),
		Dispatcher: dispatcher,
		Log:        logger,
		ErrLog:     errLog,
	}
}

// GetStore returns the underlying request store for use by other
// components.
func (h *Handler) GetStore() *requeststore.Store {
	return h.Store
}
