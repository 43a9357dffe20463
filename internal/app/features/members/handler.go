// internal/app/features/members/handler.go
package members

import (
	apierrors "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/store/queries/memberquery"
	"github.com/phearom922/wall-of-fame/internal/app/system/auditlog"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/reorder"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the member registry.
// It holds the DB handle, stores, and logger provided by WAFFLE DBDeps / Startup.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Images   imagestore.Store
	MaxBody  int64 // bytes, including any uploaded image

	Members *memberstore.Store
	Pins    *pinstore.Store
	Query   *memberquery.Engine
	Reorder *reorder.Engine
}

func NewHandler(db *mongo.Database, images imagestore.Store, maxBody int64, errLog *apierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	pins := pinstore.New(db)
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Images:   images,
		MaxBody:  maxBody,
		Members:  memberstore.New(db),
		Pins:     pins,
		Query:    memberquery.New(db, pins),
		Reorder:  reorder.New(db, logger),
	}
}
