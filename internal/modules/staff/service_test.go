package staff

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photostudio/internal/database"
	"photostudio/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(repository.NewStaffRepository(db), time.UTC, log)
}

func TestService_CreateAndAddSlots(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, CreateStaffRequest{Name: "Kasun", Specialization: "Weddings"})
	require.NoError(t, err)
	assert.True(t, member.Available)
	assert.NotEmpty(t, member.ID)

	_, err = svc.AddSlots(ctx, member.ID, []string{"2026-11-05", "2026-11-03"})
	require.NoError(t, err)

	got, err := svc.AddSlots(ctx, member.ID, []string{"2026-11-04"})
	require.NoError(t, err)
	require.Len(t, got.Slots, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got.Slots[0].Position, got.Slots[1].Position, got.Slots[2].Position})
	assert.Equal(t, "2026-11-05", got.Slots[0].Date.In(time.UTC).Format("2006-01-02"))
	assert.Equal(t, "2026-11-04", got.Slots[2].Date.In(time.UTC).Format("2006-01-02"))
	for _, s := range got.Slots {
		assert.True(t, s.Available)
	}
}

func TestService_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStaffRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	member, err := svc.Create(ctx, CreateStaffRequest{Name: "Dilani"})
	require.NoError(t, err)

	_, err = svc.AddSlots(ctx, member.ID, []string{"05/11/2026"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddSlots(ctx, "missing", []string{"2026-11-05"})
	assert.ErrorIs(t, err, ErrNotFound)
}
