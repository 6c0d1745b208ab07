package profile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const loadSkillsQuery = `SELECT skill, credential_count, experience_count, COALESCE(proficiency, 0)
	FROM user_skills WHERE user_id = $1 ORDER BY skill`

// PostgresStore reads profiles from the user_skills table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadProfile returns ErrNotFound when the user has no skill rows.
func (s *PostgresStore) LoadProfile(ctx context.Context, userID int) (*Profile, error) {
	rows, err := s.pool.Query(ctx, loadSkillsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	defer rows.Close()

	b := NewBuilder(userID)
	found := false
	for rows.Next() {
		var (
			skill                    string
			credentials, experiences int
			proficiency              int
		)
		if err := rows.Scan(&skill, &credentials, &experiences, &proficiency); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		b.Add(skill, credentials, experiences, proficiency)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skills: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return b.Profile(), nil
}
