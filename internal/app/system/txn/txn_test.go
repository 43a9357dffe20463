package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phearom922/wall-of-fame/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsNotSupported(t *testing.T) {
	standalone := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"standalone mongod rejects txn numbers", standalone, true},
		{"standalone rejection wrapped by reorder", fmt.Errorf("reorder pin Gold: %w", standalone), true},
		{"old server without txn numbers", mongo.CommandError{Code: 51, Message: "illegal operation"}, true},
		{"bulk write not allowed in a transaction", mongo.CommandError{Code: 263, Message: "operation not supported in a multi-document transaction"}, true},
		{"duplicate key", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}, false},
		{"member in another pin", errors.New(`member "KH-001" is not in pin "Gold"`), false},
		{"deadline", context.DeadlineExceeded, false},
		{"sessions unsupported, any case", errors.New("Sessions are NOT SUPPORTED by the MongoDB cluster"), true},
		{"transaction on a non replica set", errors.New("TRANSACTION requires a Replica Set"), true},
		{"transaction failure alone", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_FallsBackWhenTransactionsUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zap.WarnLevel)
	coll := db.Collection("txn_fallback")
	calls := 0
	err := Run(ctx, db.Client(), zap.New(core), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}
		}
		_, err := coll.InsertOne(ctx, bson.M{"pin_order": 1})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("callback ran %d times, want 2", calls)
	}
	if n, _ := coll.CountDocuments(ctx, bson.M{}); n != 1 {
		t.Errorf("expected 1 document after fallback, got %d", n)
	}
	if logs.FilterMessage("transactions unavailable; running without one").Len() != 1 {
		t.Error("expected a warning for the fallback")
	}
}

func TestRun_CommitsWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_commit")
	err := Run(ctx, db.Client(), zap.NewNop(), func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		_, err := coll.InsertOne(ctx, bson.M{"n": 2})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 documents, got %d", n)
	}
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("boom")
	err := Run(ctx, db.Client(), zap.NewNop(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}
