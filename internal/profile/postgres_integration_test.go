package profile

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set TEST_DATABASE_URL to run these against a real database.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	store, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	_, err = store.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS user_skills (
		user_id integer NOT NULL,
		skill text NOT NULL,
		credential_count integer NOT NULL DEFAULT 0,
		experience_count integer NOT NULL DEFAULT 0,
		proficiency integer
	)`)
	require.NoError(t, err)

	_, err = store.pool.Exec(ctx, `DELETE FROM user_skills WHERE user_id IN (42, 43)`)
	require.NoError(t, err)

	return store
}

func TestIntegration_LoadProfile(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.pool.Exec(ctx, `INSERT INTO user_skills (user_id, skill, credential_count, experience_count, proficiency)
		VALUES (42, 'PHP', 1, 0, 3), (42, 'docker', 0, 0, NULL)`)
	require.NoError(t, err)

	p, err := store.LoadProfile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"php"}, p.Skills())
	assert.Equal(t, 3, p.Proficiency["php"])

	_, err = store.LoadProfile(ctx, 43)
	assert.True(t, errors.Is(err, ErrNotFound))
}
