package service

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/testutil"
)

func newYork(t testing.TB) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

// fixture is a migrated database with one user, family and 5-8 child
type fixture struct {
	db       *database.DB
	log      *logger.Logger
	loc      *time.Location
	userID   string
	familyID string
	childID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	userID := testutil.CreateUser(t, db, "parent@example.com")
	familyID := testutil.CreateFamily(t, db, userID)
	return &fixture{
		db:       db,
		log:      logger.Nop(),
		loc:      newYork(t),
		userID:   userID,
		familyID: familyID,
		childID:  testutil.CreateChild(t, db, familyID, "5-8"),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func logCompletion(t *testing.T, f *fixture, challengeID string, at time.Time) {
	t.Helper()
	testutil.LogCompletion(t, f.db, f.childID, challengeID, at, f.loc)
}
