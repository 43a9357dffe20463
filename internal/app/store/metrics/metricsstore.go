package metricsstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of collection totals exported as gauges.
type Counts struct {
	Members        int64
	EnabledMembers int64
	ActiveMembers  int64
	Pins           int64
	Admins         int64
}

// FetchCounts returns the collection totals. Active means end_pin after now.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database, now time.Time) Counts {
	var out Counts

	members := db.Collection("members")
	if n, err := members.CountDocuments(ctx, bson.M{}); err == nil {
		out.Members = n
	}
	if n, err := members.CountDocuments(ctx, bson.M{"enabled": true}); err == nil {
		out.EnabledMembers = n
	}
	if n, err := members.CountDocuments(ctx, bson.M{"end_pin": bson.M{"$gt": now}}); err == nil {
		out.ActiveMembers = n
	}

	if n, err := db.Collection("pins").CountDocuments(ctx, bson.M{}); err == nil {
		out.Pins = n
	}
	if n, err := db.Collection("admins").CountDocuments(ctx, bson.M{}); err == nil {
		out.Admins = n
	}

	return out
}
