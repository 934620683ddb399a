package profile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bloom/internal/auth"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, uint64) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "profile.db") + "?_foreign_keys=on&_busy_timeout=5000"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&auth.User{}, &BabyInfo{}))

	u := auth.User{Email: "parent@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, gdb.Create(&u).Error)
	return &Service{DB: gdb}, u.ID
}

func ptr[T any](v T) *T { return &v }

func TestUpdate_OnlyAllowedFields(t *testing.T) {
	svc, uid := newTestService(t)
	ctx := context.Background()

	u, err := svc.Update(ctx, uid, ProfileUpdate{
		FullName: ptr("  Ada Lovelace "),
		Country:  ptr("UK"),
		DueDate:  ptr("2025-06-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "UK", u.Country)
	require.NotNil(t, u.DueDate)
	assert.Equal(t, "2025-06-01", u.DueDate.Format(DateLayout))
	assert.Equal(t, "parent@example.com", u.Email)

	u, err = svc.Update(ctx, uid, ProfileUpdate{DueDate: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, u.DueDate)
	assert.Equal(t, "Ada Lovelace", u.FullName)
}

func TestUpdate_Errors(t *testing.T) {
	svc, uid := newTestService(t)

	_, err := svc.Update(context.Background(), uid, ProfileUpdate{DueDate: ptr("01/06/2025")})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Update(context.Background(), uid+100, ProfileUpdate{Country: ptr("FR")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBabyInfo_Upsert(t *testing.T) {
	svc, uid := newTestService(t)
	ctx := context.Background()

	empty, err := svc.GetBabyInfo(ctx, uid)
	require.NoError(t, err)
	assert.Zero(t, empty.ID)
	assert.Equal(t, uid, empty.UserID)

	info, err := svc.UpsertBabyInfo(ctx, uid, BabyUpdate{Name: ptr("Bean"), DueDate: ptr("2025-09-10")})
	require.NoError(t, err)
	assert.NotZero(t, info.ID)

	again, err := svc.UpsertBabyInfo(ctx, uid, BabyUpdate{DoctorName: ptr("Dr. Hale")})
	require.NoError(t, err)
	assert.Equal(t, info.ID, again.ID)
	assert.Equal(t, "Bean", again.Name)
	assert.Equal(t, "Dr. Hale", again.DoctorName)

	_, err = svc.UpsertBabyInfo(ctx, uid, BabyUpdate{DueDate: ptr("soon")})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDueDate_PrefersAccountThenBaby(t *testing.T) {
	svc, uid := newTestService(t)
	ctx := context.Background()

	due, err := svc.DueDate(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, due)

	_, err = svc.UpsertBabyInfo(ctx, uid, BabyUpdate{DueDate: ptr("2025-09-10")})
	require.NoError(t, err)
	due, err = svc.DueDate(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, "2025-09-10", due.Format(DateLayout))

	_, err = svc.Update(ctx, uid, ProfileUpdate{DueDate: ptr("2025-06-01")})
	require.NoError(t, err)
	due, err = svc.DueDate(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, "2025-06-01", due.Format(DateLayout))
}
