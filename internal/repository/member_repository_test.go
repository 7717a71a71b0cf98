package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/config"
	"github.com/samplecodes/testkata/internal/database"
	"github.com/samplecodes/testkata/internal/display"
	"github.com/samplecodes/testkata/internal/users"
)

func skipIfNoPostgres(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_POSTGRES") != "true" {
		t.Skip("Skipping: TEST_POSTGRES not set. Run with docker-compose up -d")
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func testDBConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            5432,
		User:            getEnvOrDefault("DB_USER", "testkata"),
		Password:        getEnvOrDefault("DB_PASSWORD", "testkata_dev_password"),
		DBName:          getEnvOrDefault("DB_NAME", "testkata"),
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func setupTestDB(t *testing.T) (*PostgresMemberRepository, func()) {
	t.Helper()

	ctx := context.Background()
	cfg := testDBConfig()

	require.NoError(t, database.RunMigrations(nil, cfg))

	pool, err := database.NewPool(ctx, cfg)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "DELETE FROM members")
	require.NoError(t, err)

	cleanup := func() {
		_, _ = pool.Exec(ctx, "DELETE FROM members")
		pool.Close()
	}

	return NewPostgresMemberRepository(pool), cleanup
}

func TestPostgresMemberRepository_SatisfiesCollaborators(t *testing.T) {
	var _ users.Directory = (*PostgresMemberRepository)(nil)
	var _ display.NameLookup = (*PostgresMemberRepository)(nil)
}

func TestPostgresMemberRepository_ListMembers(t *testing.T) {
	skipIfNoPostgres(t)

	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	seed := []users.Member{
		{ID: "b", Name: "Hanako", Age: 18, IsActive: true},
		{ID: "a", Name: "Taro", Age: 25, IsActive: true},
		{ID: "c", Name: "Jiro", Age: 30, IsActive: false},
	}
	for _, m := range seed {
		require.NoError(t, repo.SaveMember(ctx, m))
	}

	members, err := repo.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "a", members[0].ID)
	assert.Equal(t, "b", members[1].ID)
	assert.Equal(t, "c", members[2].ID)

	adults, err := users.NewManager(repo).GetActiveAdults(ctx)
	require.NoError(t, err)
	require.Len(t, adults, 1)
	assert.Equal(t, "Taro", adults[0].Name)
}

func TestPostgresMemberRepository_GetMember(t *testing.T) {
	skipIfNoPostgres(t)

	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, users.Member{ID: "42", Name: "Saburo", Age: 20, IsActive: true}))

	t.Run("existing member", func(t *testing.T) {
		m, err := repo.GetMember(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, &users.Member{ID: "42", Name: "Saburo", Age: 20, IsActive: true}, m)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, repo.SaveMember(ctx, users.Member{ID: "42", Name: "Shiro", Age: 21}))
		name, err := repo.GetUserName(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "Shiro", name)
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := repo.GetMember(ctx, "nope")
		assert.ErrorIs(t, err, ErrMemberNotFound)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestPostgresMemberRepository_DeleteMember(t *testing.T) {
	skipIfNoPostgres(t)

	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, users.Member{ID: "del", Name: "Gone", Age: 40}))
	require.NoError(t, repo.DeleteMember(ctx, "del"))
	assert.ErrorIs(t, repo.DeleteMember(ctx, "del"), ErrMemberNotFound)
}

func TestPostgresMemberRepository_GetUserName_EmptyID(t *testing.T) {
	repo := NewPostgresMemberRepository(nil)

	_, err := repo.GetUserName(context.Background(), "")

	assert.ErrorIs(t, err, users.ErrMissingUserID)
}

func TestPostgresMemberRepository_HealthCheck(t *testing.T) {
	skipIfNoPostgres(t)

	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, repo.HealthCheck(context.Background()))
}
