package activity_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-lending/lending-ledger/lending/activity"
	"github.com/library-lending/lending-ledger/testutil/helper"
)

func Test_StaticChecker(t *testing.T) {
	// arrange
	checker := activity.NewStaticChecker("ana", "ben")

	// act
	checker.SetActive("ben", false)
	checker.SetActive("carl", true)

	// assert
	assert.True(t, checker.IsActive("ana"))
	assert.False(t, checker.IsActive("ben"))
	assert.True(t, checker.IsActive("carl"))
	assert.False(t, checker.IsActive("dora"))
}

func Test_SQLiteChecker_IsActive(t *testing.T) {
	// arrange
	ctx := context.Background()
	checker := openChecker(t)
	require.NoError(t, checker.Upsert(ctx, "ana", true))
	require.NoError(t, checker.Upsert(ctx, "ben", false))

	// act + assert
	assert.True(t, checker.IsActive("ana"))
	assert.False(t, checker.IsActive("ben"))
	assert.False(t, checker.IsActive("unknown"))
}

func Test_SQLiteChecker_Upsert_UpdatesExistingMember(t *testing.T) {
	// arrange
	ctx := context.Background()
	checker := openChecker(t)
	require.NoError(t, checker.Upsert(ctx, "ana", true))

	// act
	err := checker.Upsert(ctx, "ana", false)

	// assert
	require.NoError(t, err)
	member, err := checker.Member(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", member.ID)
	assert.False(t, member.Active)
	assert.False(t, checker.IsActive("ana"))
}

func Test_SQLiteChecker_Migrate_IsIdempotent(t *testing.T) {
	// arrange
	checker := openChecker(t)

	// act
	err := checker.Migrate(context.Background())

	// assert
	assert.NoError(t, err)
}

func Test_SQLiteChecker_TreatsLookupFailureAsInactive(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)
	checker, err := activity.OpenSQLiteChecker(
		context.Background(),
		":memory:",
		activity.WithLogger(slog.New(logHandler)),
	)
	require.NoError(t, err)
	require.NoError(t, checker.Upsert(context.Background(), "ana", true))
	require.NoError(t, checker.Close())

	// act
	active := checker.IsActive("ana")

	// assert
	assert.False(t, active)
	assert.True(t, logHandler.HasWarnLog("member lookup failed, treating reader as inactive"))
}

func openChecker(t *testing.T) *activity.SQLiteChecker {
	t.Helper()

	checker, err := activity.OpenSQLiteChecker(context.Background(), ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = checker.Close() })

	return checker
}
