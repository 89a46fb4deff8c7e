// internal/app/features/employees/handler.go
package employees

import (
	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the employee directory handlers.
type Handler struct {
	DB     *mongo.Database
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Employees Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}

// GetStore returns the underlying user store for use by other components.
func (h *Handler) GetStore() *userstore.Store {
	return h.Users
}
