// internal/app/features/announcements/handler.go
package announcements

import (
	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	announcementstore "github.com/nibrashq/nibras/internal/app/store/announcements"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all Announcements handlers.
type Handler struct {
	DB         *mongo.Database
	Store      *announcementstore.Store
	Users      *userstore.Store
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs an Announcements Handler.
func NewHandler(db *mongo.Database, dispatcher *notify.Dispatcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Store:      announcementstore.New(db),
		Users:      userstore.New(db),
		Dispatcher: dispatcher,
		Log:        logger,
		ErrLog:     errLog,
	}
}

// GetStore returns the underlying announcement store for use by other
// components.
func (h *Handler) GetStore() *announcementstore.Store {
	return h.Store
}
