// internal/app/store/members/memberstore.go
package memberstore

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
	ErrDuplicateMemberID = errors.New("a member with this member id already exists")
	ErrNotFound          = errors.New("member not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// Create inserts a member. New members are enabled.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.MemberID = strings.TrimSpace(m.MemberID)
	m.MemberName = strings.TrimSpace(m.MemberName)
	m.Pin = strings.TrimSpace(m.Pin)
	m.Enabled = true
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicateMemberID
		}
		return models.Member{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// MemberIDExists reports whether a member already uses memberID.
func (s *Store) MemberIDExists(ctx context.Context, memberID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"member_id": strings.TrimSpace(memberID)},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update holds the editable fields. Nil fields are left alone. A non-nil
// ImageURL pointing at "" clears the image.
type Update struct {
	MemberName *string
	Pin        *string
	PinOrder   *int
	StartPin   *time.Time
	EndPin     *time.Time
	ImageURL   *string
	Enabled    *bool
}

// Update applies upd and returns the updated member.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Member, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.MemberName != nil {
		set["member_name"] = strings.TrimSpace(*upd.MemberName)
	}
	if upd.Pin != nil {
		set["pin"] = strings.TrimSpace(*upd.Pin)
	}
	if upd.PinOrder != nil {
		set["pin_order"] = *upd.PinOrder
	}
	if upd.StartPin != nil {
		set["start_pin"] = *upd.StartPin
	}
	if upd.EndPin != nil {
		set["end_pin"] = *upd.EndPin
	}
	if upd.ImageURL != nil {
		if v := strings.TrimSpace(*upd.ImageURL); v != "" {
			set["image_url"] = v
		} else {
			set["image_url"] = nil
		}
	}
	if upd.Enabled != nil {
		set["enabled"] = *upd.Enabled
	}

	var m models.Member
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// ToggleEnabled flips the enabled flag in a single pipeline update and
// returns the member as it is afterwards.
func (s *Store) ToggleEnabled(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"enabled":    bson.M{"$not": bson.A{"$enabled"}},
			"updated_at": time.Now().UTC(),
		}}},
	}
	var m models.Member
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// Delete removes a member by ID and returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PinsByIDs returns the stored pin name of each member found, keyed by ID.
func (s *Store) PinsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "pin": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID  primitive.ObjectID `bson:"_id"`
			Pin string             `bson:"pin"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Pin
	}
	return out, cur.Err()
}

// OrderUpdate assigns PinOrder to the member with ID.
type OrderUpdate struct {
	ID       primitive.ObjectID
	PinOrder int
}

// SetPinOrders writes every order update in one ordered bulk write. Each
// update only matches a member that is still in pin, so a member moved to
// another category in the meantime is left alone. Returns the matched count.
// ctx may carry a transaction session.
func (s *Store) SetPinOrders(ctx context.Context, pin string, updates []OrderUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID, "pin": pin}).
			SetUpdate(bson.M{"$set": bson.M{"pin_order": u.PinOrder, "updated_at": now}}))
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Count returns the number of members matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.CountDocuments(ctx, filter)
}
