// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. It is idempotent and reports every
// collection that could not be brought in line, so startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range collections() {
		if err := ensureIndexSet(ctx, db.Collection(set.name), set.models); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionIndexes struct {
	name   string
	models []mongo.IndexModel
}

func collections() []collectionIndexes {
	return []collectionIndexes{
		{"members", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "member_id", Value: 1}},
				Options: options.Index().SetName("uniq_members_member_id").SetUnique(true),
			},
			{
				// Serves pin filtering and the in-pin ordering of the listing.
				Keys:    bson.D{{Key: "pin", Value: 1}, {Key: "pin_order", Value: 1}, {Key: "member_name", Value: 1}},
				Options: options.Index().SetName("idx_members_pin_order"),
			},
			{
				// Status filters and stats compare end_pin against now.
				Keys:    bson.D{{Key: "end_pin", Value: 1}},
				Options: options.Index().SetName("idx_members_end_pin"),
			},
			{
				Keys:    bson.D{{Key: "member_name", Value: 1}},
				Options: options.Index().SetName("idx_members_member_name"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_members_created_at"),
			},
		}},
		{"pins", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName("uniq_pins_name").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "rank", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetName("idx_pins_rank_name"),
			},
		}},
		{"admins", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("uniq_admins_username").SetUnique(true),
			},
		}},
	}
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func desired(m mongo.IndexModel) (name string, unique bool) {
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = isUnique(m.Options.Unique)
	}
	return name, unique
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet reconciles models against the collection by key pattern:
// a matching index with the same uniqueness and name is kept, one that
// differs is dropped and recreated, and a missing one is created.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to list.
		zap.L().Debug("listing indexes failed; creating all",
			zap.String("collection", coll.Name()), zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		start := time.Now()
		name, unique := desired(m)
		sig := keySig(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		)

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == unique && (name == "" || ex.Name == name) {
				log.Debug("index up to date")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped index to recreate", zap.String("old_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index, duplicate values present", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		log.Info("index created", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
