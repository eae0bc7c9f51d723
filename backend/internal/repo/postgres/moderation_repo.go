package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

// ModerationRepo reads the queue of petitions awaiting review.
type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

func (r *ModerationRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, errNilPool
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM petitions
WHERE status = 'pending'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending petitions: %w", err)
	}

	return count, nil
}

// ListPending returns the oldest pending petitions first.
func (r *ModerationRepo) ListPending(ctx context.Context, limit int) ([]model.Petition, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+petitionColumns+`
FROM petitions
WHERE status = 'pending'
ORDER BY created_at ASC, id ASC
LIMIT $1
`, clampLimit(limit, 20, 100))
	if err != nil {
		return nil, fmt.Errorf("list pending petitions: %w", err)
	}
	return collectPetitions(rows)
}
