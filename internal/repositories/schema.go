package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tripsSchema = `
CREATE TABLE IF NOT EXISTS trips (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	name       TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date   DATE NOT NULL,
	rating     INT
);
CREATE INDEX IF NOT EXISTS idx_trips_user_id ON trips (user_id);
`

// EnsureSchema creates the trips table if it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, tripsSchema); err != nil {
		return fmt.Errorf("failed to ensure trips schema: %w", err)
	}
	return nil
}
