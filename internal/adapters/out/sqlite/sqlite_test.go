package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

func testContext() context.Context {
	return logging.WithCtx(context.Background(), zerolog.Nop())
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(testContext(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func record(id, name string, created time.Time) domain.StoredConfig {
	return domain.StoredConfig{
		ID: id,
		Config: dockerrun.Config{
			Name:          name,
			Image:         "nginx",
			Tag:           "1.25",
			RestartPolicy: dockerrun.RestartAlways,
			Ports:         []dockerrun.Port{{Host: dockerrun.IntPtr(8080), Container: dockerrun.IntPtr(80)}},
			EnvVars:       []dockerrun.KeyValue{{Key: "ENV", Value: "prod"}},
			Volumes:       []dockerrun.Volume{{Host: "/data", Container: "/var/lib/data", Mode: dockerrun.VolumeReadOnly}},
		},
		Command:   "docker run -d --name " + name + " nginx:1.25",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestOpen_FileDatabaseIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.db")

	db, err := Open(testContext(), path)
	require.NoError(t, err)
	store := NewConfigStore(db)
	require.NoError(t, store.Insert(testContext(), record("a", "web", baseTime)))
	require.NoError(t, db.Close())

	db, err = Open(testContext(), path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewConfigStore(db).Get(testContext(), "a")
	require.NoError(t, err)
	assert.Equal(t, "web", got.Name())

	var version int
	require.NoError(t, db.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestConfigStore_InsertGet(t *testing.T) {
	store := NewConfigStore(openTestDB(t))
	ctx := testContext()

	want := record("a", "web", baseTime)
	want.Config.Labels = []dockerrun.KeyValue{{Key: "team", Value: "core"}}
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, got.Config.AddHosts)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore(openTestDB(t))

	_, err := store.Get(testContext(), "missing")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestConfigStore_NameTaken(t *testing.T) {
	store := NewConfigStore(openTestDB(t))
	ctx := testContext()

	require.NoError(t, store.Insert(ctx, record("a", "web", baseTime)))
	require.NoError(t, store.Insert(ctx, record("b", "api", baseTime)))

	err := store.Insert(ctx, record("c", "web", baseTime))
	assert.ErrorIs(t, err, domain.ErrConfigNameTaken)

	renamed := record("b", "web", baseTime)
	assert.ErrorIs(t, store.Update(ctx, renamed), domain.ErrConfigNameTaken)

	exists, err := store.NameExists(ctx, "web")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.NameExists(ctx, "db")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConfigStore_Update(t *testing.T) {
	store := NewConfigStore(openTestDB(t))
	ctx := testContext()

	rec := record("a", "web", baseTime)
	require.NoError(t, store.Insert(ctx, rec))

	rec.Config.Tag = "1.27"
	rec.Config.Ports = nil
	rec.Command = "docker run -d --name web nginx:1.27"
	rec.UpdatedAt = baseTime.Add(time.Hour)
	rec.CreatedAt = baseTime.Add(48 * time.Hour)
	require.NoError(t, store.Update(ctx, rec))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1.27", got.Config.Tag)
	assert.Nil(t, got.Config.Ports)
	assert.Equal(t, rec.Command, got.Command)
	assert.Equal(t, baseTime, got.CreatedAt, "created_at is immutable")
	assert.Equal(t, baseTime.Add(time.Hour), got.UpdatedAt)

	assert.ErrorIs(t, store.Update(ctx, record("missing", "ghost", baseTime)), domain.ErrConfigNotFound)
}

func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore(openTestDB(t))
	ctx := testContext()

	require.NoError(t, store.Insert(ctx, record("a", "web", baseTime)))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a"), domain.ErrConfigNotFound)
}

func TestConfigStore_List(t *testing.T) {
	store := NewConfigStore(openTestDB(t))
	ctx := testContext()

	for i := 0; i < 5; i++ {
		rec := record(fmt.Sprintf("id-%d", i), fmt.Sprintf("web-%d", i), baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Insert(ctx, rec))
	}
	special := record("id-x", "cache_100%", baseTime.Add(-time.Hour))
	special.Config.Image = "redis"
	special.Config.Tag = "7-alpine"
	require.NoError(t, store.Insert(ctx, special))

	tests := []struct {
		name      string
		query     domain.ListQuery
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "first page newest first",
			query:     domain.ListQuery{Page: 1, PageSize: 2},
			wantIDs:   []string{"id-4", "id-3"},
			wantTotal: 6,
		},
		{
			name:      "last page",
			query:     domain.ListQuery{Page: 3, PageSize: 2},
			wantIDs:   []string{"id-0", "id-x"},
			wantTotal: 6,
		},
		{
			name:      "past the end",
			query:     domain.ListQuery{Page: 9, PageSize: 2},
			wantIDs:   nil,
			wantTotal: 6,
		},
		{
			name:      "search by image is case insensitive",
			query:     domain.ListQuery{Search: "REDIS", Page: 1, PageSize: 10},
			wantIDs:   []string{"id-x"},
			wantTotal: 1,
		},
		{
			name:      "search by tag",
			query:     domain.ListQuery{Search: "alpine", Page: 1, PageSize: 10},
			wantIDs:   []string{"id-x"},
			wantTotal: 1,
		},
		{
			name:      "wildcards are literal",
			query:     domain.ListQuery{Search: "_100%", Page: 1, PageSize: 10},
			wantIDs:   []string{"id-x"},
			wantTotal: 1,
		},
		{
			name:      "underscore does not match any char",
			query:     domain.ListQuery{Search: "web_", Page: 1, PageSize: 10},
			wantIDs:   nil,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := store.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			var ids []string
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestUserStore(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := testContext()

	u := domain.User{
		ID:           "user-1",
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	require.NoError(t, store.Create(ctx, u))

	dup := u
	dup.ID = "user-2"
	assert.ErrorIs(t, store.Create(ctx, dup), domain.ErrEmailInUse)

	got, err := store.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	u.Name = "Root"
	u.UpdatedAt = baseTime.Add(time.Minute)
	require.NoError(t, store.Update(ctx, u))

	got, err = store.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.Name)
	assert.Equal(t, baseTime.Add(time.Minute), got.UpdatedAt)

	_, err = store.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = store.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, store.Update(ctx, domain.User{ID: "ghost", Email: "g@example.com"}), domain.ErrUserNotFound)
}
