package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/MatiasH11/vibe-calendar-sub004/pkg/errors"
)

func TestWeekScheduleKeySpace(t *testing.T) {
	assert.Equal(t, "schedule:week:c1:2024-01-15", WeekScheduleKey("c1", "2024-01-15"))
	assert.Equal(t, "schedule:week:c1:*", WeekSchedulePattern("c1"))
}

func TestCacheRepositoryNilClientDegradesToNoop(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest struct{}
	err := repo.Get(ctx, WeekScheduleKey("c1", "2024-01-15"), &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, repo.Set(ctx, WeekScheduleKey("c1", "2024-01-15"), dest, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, WeekSchedulePattern("c1")))
	assert.NoError(t, repo.Close())
}
