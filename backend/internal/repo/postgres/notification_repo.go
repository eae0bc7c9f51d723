package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) error {
	if r.pool == nil {
		return errNilPool
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO notifications (id, user_id, kind, title, body, petition_id, appeal_id, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Body,
		n.PetitionID,
		n.AppealID,
		n.Read,
		n.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, kind, title, body, petition_id, appeal_id, read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n    model.Notification
			kind string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &n.PetitionID, &n.AppealID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = enums.NotificationKind(kind)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	if r.pool == nil {
		return errNilPool
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE notifications SET read = TRUE
WHERE id = $1 AND user_id = $2
`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %w", apperr.ErrNotFound)
	}
	return nil
}
