package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createUserDataTable = `
CREATE TABLE IF NOT EXISTS user_data (
	id SERIAL PRIMARY KEY,
	user_id VARCHAR(255) UNIQUE NOT NULL,
	prompt_data JSONB,
	feedback_history JSONB
)`

const upsertUserData = `
INSERT INTO user_data (user_id, prompt_data, feedback_history)
VALUES ($1, $2, $3)
ON CONFLICT (user_id)
DO UPDATE SET
	prompt_data = EXCLUDED.prompt_data,
	feedback_history = EXCLUDED.feedback_history`

const selectUserData = `
SELECT prompt_data, feedback_history
FROM user_data
WHERE user_id = $1`

// Postgres stores one row per user in user_data with JSONB columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and makes sure the table exists.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createUserDataTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create user_data: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Load(ctx context.Context, userID string) (Snapshot, bool, error) {
	if err := checkUserID(userID); err != nil {
		return Snapshot{}, false, err
	}

	var promptData, feedback []byte
	err := p.pool.QueryRow(ctx, selectUserData, userID).Scan(&promptData, &feedback)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("select user_data: %w", err)
	}

	var snap Snapshot
	if len(promptData) > 0 {
		if err := json.Unmarshal(promptData, &snap.PromptData); err != nil {
			return Snapshot{}, false, fmt.Errorf("%w: prompt_data: %w", ErrCorrupt, err)
		}
	}
	if len(feedback) > 0 {
		if err := json.Unmarshal(feedback, &snap.FeedbackHistory); err != nil {
			return Snapshot{}, false, fmt.Errorf("%w: feedback_history: %w", ErrCorrupt, err)
		}
	}
	return snap, true, nil
}

func (p *Postgres) Save(ctx context.Context, userID string, snap Snapshot) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	promptData, err := json.Marshal(snap.PromptData)
	if err != nil {
		return err
	}
	feedback, err := json.Marshal(snap.FeedbackHistory)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, upsertUserData, userID, string(promptData), string(feedback)); err != nil {
		return fmt.Errorf("upsert user_data: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
