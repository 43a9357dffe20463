// Package memberstatus derives a member's Active/Expired status from the end
// of its membership window. Status is never stored.
package memberstatus

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	Active  = "Active"
	Expired = "Expired"
)

// Derive returns Active when endPin is strictly after now, else Expired.
func Derive(endPin, now time.Time) string {
	if endPin.After(now) {
		return Active
	}
	return Expired
}

// Filter returns the end_pin predicate selecting members whose status at now
// equals status (case-insensitive). ok is false for any other value, in which
// case the caller applies no status filter.
func Filter(status string, now time.Time) (cond bson.M, ok bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		return bson.M{"$gt": now}, true
	case "expired":
		return bson.M{"$lte": now}, true
	}
	return nil, false
}
