// internal/app/store/admins/adminstore.go
package adminstore

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
	ErrDuplicateUsername = errors.New("an admin with this username already exists")
	ErrNotFound          = errors.New("admin not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// Create inserts an admin with an already hashed password.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (models.Admin, error) {
	now := time.Now().UTC()
	a := models.Admin{
		ID:           primitive.NewObjectID(),
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateUsername
		}
		return models.Admin{}, err
	}
	return a, nil
}

// GetByUsername matches the username exactly after trimming.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.Admin, error) {
	return s.findOne(ctx, bson.M{"username": strings.TrimSpace(username)})
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Admin, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// Usernames maps each found ID to its username. Unknown IDs are absent.
func (s *Store) Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var a models.Admin
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out[a.ID] = a.Username
	}
	return out, cur.Err()
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Admin{}, ErrNotFound
		}
		return models.Admin{}, err
	}
	return a, nil
}

// EnsureAdmin creates the admin when no account with username exists.
// An existing account is left as is, including its password. It reports
// whether an account was created.
func (s *Store) EnsureAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, username, passwordHash); err != nil {
		// Another instance seeded it first.
		if errors.Is(err, ErrDuplicateUsername) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
