// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
//
// Services is allocated by ConnectDB and filled in by Startup, so the
// value copies WAFFLE hands to later hooks all see the same components.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Services      *Services
}
