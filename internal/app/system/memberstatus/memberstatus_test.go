package memberstatus

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDerive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		endPin time.Time
		want   string
	}{
		{"future", now.Add(24 * time.Hour), Active},
		{"one nanosecond ahead", now.Add(time.Nanosecond), Active},
		{"exactly now", now, Expired},
		{"past", now.Add(-time.Hour), Expired},
		{"zero time", time.Time{}, Expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.endPin, now); got != tt.want {
				t.Errorf("Derive(%v) = %q, want %q", tt.endPin, got, tt.want)
			}
		})
	}
}

func TestDerive_IgnoresLocation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bangkok := time.FixedZone("ICT", 7*3600)
	same := now.In(bangkok)
	if got := Derive(same, now); got != Expired {
		t.Errorf("same instant in another zone = %q, want %q", got, Expired)
	}
}

func TestFilter(t *testing.T) {
	now := time.Now()

	tests := []struct {
		status string
		op     string
		ok     bool
	}{
		{"active", "$gt", true},
		{"ACTIVE", "$gt", true},
		{" Expired ", "$lte", true},
		{"expired", "$lte", true},
		{"", "", false},
		{"pending", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			cond, ok := Filter(tt.status, now)
			if ok != tt.ok {
				t.Fatalf("Filter(%q) ok = %v, want %v", tt.status, ok, tt.ok)
			}
			if !ok {
				return
			}
			want := bson.M{tt.op: now}
			if len(cond) != 1 || cond[tt.op] != want[tt.op] {
				t.Errorf("Filter(%q) = %v, want %v", tt.status, cond, want)
			}
		})
	}
}
