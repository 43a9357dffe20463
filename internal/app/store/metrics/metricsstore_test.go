package metricsstore_test

import (
	"testing"
	"time"

	metricsstore "github.com/phearom922/wall-of-fame/internal/app/store/metrics"
	"github.com/phearom922/wall-of-fame/internal/testutil"
)

func TestFetchCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchCounts(ctx, db, time.Now())

	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected zero counts, got %+v", counts)
	}
}

func TestFetchCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	fixtures.CreatePin(ctx, "Gold", 11)
	fixtures.CreatePin(ctx, "Silver", 12)
	fixtures.CreateMember(ctx, "m1", "One", "Gold", testutil.MemberOpts{EndPin: now.Add(time.Hour)})
	fixtures.CreateMember(ctx, "m2", "Two", "Gold", testutil.MemberOpts{EndPin: now.Add(-time.Hour)})
	fixtures.CreateMember(ctx, "m3", "Three", "Silver", testutil.MemberOpts{Disabled: true})
	fixtures.CreateAdmin(ctx, "admin", "secret-pass")

	counts := metricsstore.FetchCounts(ctx, db, now)

	want := metricsstore.Counts{
		Members:        3,
		EnabledMembers: 2,
		ActiveMembers:  2,
		Pins:           2,
		Admins:         1,
	}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}
