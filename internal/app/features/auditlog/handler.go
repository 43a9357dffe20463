// internal/app/features/auditlog/handler.go
package auditlog

import (
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	adminstore "github.com/phearom922/wall-of-fame/internal/app/store/admins"
	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
	Events *audit.Store
	Admins *adminstore.Store
}

// NewHandler constructs an Audit Log feature handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Events: audit.New(db),
		Admins: adminstore.New(db),
	}
}
