// Package reorder applies drag-and-drop orderings: member positions within
// one pin, and the ranks of the pins themselves. A batch is written entirely
// or not at all.
package reorder

import (
	"context"
	"fmt"
	"strings"

	memberstore "github.com/phearom922/wall-of-fame/internal/app/store/members"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ValidationError rejects a batch before anything is written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// MemberItem is one member's new position.
type MemberItem struct {
	ID       string `json:"id"`
	PinOrder int    `json:"pinOrder"`
}

// MembersRequest reorders members that all belong to Pin.
type MembersRequest struct {
	Pin   string       `json:"pin"`
	Items []MemberItem `json:"items"`
}

// PinItem is one pin's new rank.
type PinItem struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// PinsRequest assigns new ranks to pins.
type PinsRequest struct {
	Items []PinItem `json:"items"`
}

type Engine struct {
	client  *mongo.Client
	members *memberstore.Store
	pins    *pinstore.Store
	log     *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Engine {
	return &Engine{
		client:  db.Client(),
		members: memberstore.New(db),
		pins:    pinstore.New(db),
		log:     log,
	}
}

// Members validates req and writes every pinOrder in one bulk write. It
// returns the number of members matched. Any member that is missing or not
// in req.Pin rejects the whole batch.
func (e *Engine) Members(ctx context.Context, req MembersRequest) (int64, error) {
	pin := strings.TrimSpace(req.Pin)
	if pin == "" || len(req.Items) == 0 {
		return 0, invalid("pin and items are required")
	}

	ids := make([]primitive.ObjectID, 0, len(req.Items))
	updates := make([]memberstore.OrderUpdate, 0, len(req.Items))
	seen := make(map[primitive.ObjectID]bool, len(req.Items))
	for _, it := range req.Items {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(it.ID))
		if err != nil {
			return 0, invalid("invalid member id %q", it.ID)
		}
		if seen[oid] {
			return 0, invalid("member %s appears more than once", oid.Hex())
		}
		seen[oid] = true
		ids = append(ids, oid)
		updates = append(updates, memberstore.OrderUpdate{ID: oid, PinOrder: it.PinOrder})
	}

	var matched int64
	err := txn.Run(ctx, e.client, e.log, func(ctx context.Context) error {
		stored, err := e.members.PinsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			got, ok := stored[id]
			if !ok {
				return invalid("member %s not found", id.Hex())
			}
			if got != pin {
				return invalid("member %s is in pin %q, not %q", id.Hex(), got, pin)
			}
		}
		n, err := e.members.SetPinOrders(ctx, pin, updates)
		if err != nil {
			return err
		}
		matched = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// Pins writes every rank in one bulk write and returns the number of pins
// matched. Ids that match no pin are skipped.
func (e *Engine) Pins(ctx context.Context, req PinsRequest) (int64, error) {
	if len(req.Items) == 0 {
		return 0, invalid("items are required")
	}
	updates := make([]pinstore.RankUpdate, 0, len(req.Items))
	seen := make(map[primitive.ObjectID]bool, len(req.Items))
	for _, it := range req.Items {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(it.ID))
		if err != nil {
			return 0, invalid("invalid pin id %q", it.ID)
		}
		if seen[oid] {
			return 0, invalid("pin %s appears more than once", oid.Hex())
		}
		seen[oid] = true
		updates = append(updates, pinstore.RankUpdate{ID: oid, Rank: it.Rank})
	}

	var matched int64
	err := txn.Run(ctx, e.client, e.log, func(ctx context.Context) error {
		n, err := e.pins.SetRanks(ctx, updates)
		if err != nil {
			return err
		}
		matched = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}
