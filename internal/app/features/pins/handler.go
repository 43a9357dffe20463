// internal/app/features/pins/handler.go
package pins

import (
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/auditlog"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the pin registry.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Images   imagestore.Store
	MaxBody  int64

	Pins    *pinstore.Store
	Reorder *reorder.Engine
}

func NewHandler(db *mongo.Database, images imagestore.Store, maxBody int64, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Images:   images,
		MaxBody:  maxBody,
		Pins:     pinstore.New(db),
		Reorder:  reorder.New(db, logger),
	}
}
