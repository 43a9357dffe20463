// internal/app/store/pins/pinstore.go
package pinstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicatePin = errors.New("a pin with this name already exists")
	ErrNotFound     = errors.New("pin not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pins")}
}

// Create inserts a pin. The name is trimmed; a name already in use returns
// ErrDuplicatePin.
func (s *Store) Create(ctx context.Context, pin models.Pin) (models.Pin, error) {
	now := time.Now().UTC()
	pin.ID = primitive.NewObjectID()
	pin.Name = strings.TrimSpace(pin.Name)
	pin.CreatedAt = now
	pin.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, pin); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Pin{}, ErrDuplicatePin
		}
		return models.Pin{}, err
	}
	return pin, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Pin, error) {
	var pin models.Pin
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&pin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Pin{}, ErrNotFound
		}
		return models.Pin{}, err
	}
	return pin, nil
}

// List returns every pin ordered by rank, then name.
func (s *Store) List(ctx context.Context) ([]models.Pin, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}, {Key: "name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	pins := []models.Pin{}
	if err := cur.All(ctx, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// NameExists reports whether a pin with exactly this (trimmed) name exists.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, bson.M{"name": strings.TrimSpace(name)})
}

// NameExistsForOther is NameExists excluding the pin being renamed, so a pin
// may keep its own name.
func (s *Store) NameExistsForOther(ctx context.Context, name string, excludeID primitive.ObjectID) (bool, error) {
	return s.exists(ctx, bson.M{
		"name": strings.TrimSpace(name),
		"_id":  bson.M{"$ne": excludeID},
	})
}

func (s *Store) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := s.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update holds the fields to change. Nil fields are left alone. A non-nil
// Color or LogoURL pointing at "" clears the value.
type Update struct {
	Name    *string
	Rank    *int
	Color   *string
	LogoURL *string
}

func (u Update) empty() bool {
	return u.Name == nil && u.Rank == nil && u.Color == nil && u.LogoURL == nil
}

// Update applies upd and returns the updated pin.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Pin, error) {
	if upd.empty() {
		return s.GetByID(ctx, id)
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Rank != nil {
		set["rank"] = *upd.Rank
	}
	if upd.Color != nil {
		set["color"] = nullable(*upd.Color)
	}
	if upd.LogoURL != nil {
		set["logo_url"] = nullable(*upd.LogoURL)
	}

	var pin models.Pin
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&pin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Pin{}, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Pin{}, ErrDuplicatePin
		}
		return models.Pin{}, err
	}
	return pin, nil
}

// Delete removes a pin by ID. Members that name it are not touched.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RankMap returns name -> rank for every pin. It satisfies rank.Source.
func (s *Store) RankMap(ctx context.Context) (map[string]int, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1, "rank": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int)
	for cur.Next(ctx) {
		var row struct {
			Name string `bson:"name"`
			Rank int    `bson:"rank"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Name] = row.Rank
	}
	return out, cur.Err()
}

// RankUpdate assigns Rank to the pin with ID.
type RankUpdate struct {
	ID   primitive.ObjectID
	Rank int
}

// SetRanks writes all rank updates in one ordered bulk write and returns the
// number of pins matched. ctx may carry a transaction session.
func (s *Store) SetRanks(ctx context.Context, updates []RankUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": bson.M{"rank": u.Rank, "updated_at": now}}))
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Count returns the number of pins.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// SeedIfEmpty inserts pins only when the collection has none. It returns how
// many were inserted.
func (s *Store) SeedIfEmpty(ctx context.Context, pins []models.Pin) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(pins) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(pins))
	for _, p := range pins {
		p.ID = primitive.NewObjectID()
		p.Name = strings.TrimSpace(p.Name)
		p.CreatedAt = now
		p.UpdatedAt = now
		docs = append(docs, p)
	}
	res, err := s.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
