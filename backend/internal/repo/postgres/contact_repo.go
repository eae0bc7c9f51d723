package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

var ErrContactNotFound = fmt.Errorf("contact %w", apperr.ErrNotFound)

// ContactRepo reads the user_contacts mirror of the identity provider's directory.
type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func (r *ContactRepo) Upsert(ctx context.Context, c model.Contact, role enums.Role) error {
	if r.pool == nil {
		return errNilPool
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_contacts (user_id, display_name, email, role, telegram_chat_id, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	email = EXCLUDED.email,
	role = EXCLUDED.role,
	telegram_chat_id = COALESCE(EXCLUDED.telegram_chat_id, user_contacts.telegram_chat_id),
	updated_at = NOW()
`, c.UserID, c.DisplayName, c.Email, string(role), c.TelegramChatID); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) Get(ctx context.Context, userID string) (model.Contact, error) {
	if r.pool == nil {
		return model.Contact{}, errNilPool
	}

	var c model.Contact
	err := r.pool.QueryRow(ctx, `
SELECT user_id, display_name, email, telegram_chat_id
FROM user_contacts
WHERE user_id = $1
`, userID).Scan(&c.UserID, &c.DisplayName, &c.Email, &c.TelegramChatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Contact{}, ErrContactNotFound
		}
		return model.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// ListModerators returns contacts whose mirrored role is moderator or admin.
func (r *ContactRepo) ListModerators(ctx context.Context) ([]model.Contact, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, display_name, email, telegram_chat_id
FROM user_contacts
WHERE role IN ('moderator', 'admin')
ORDER BY user_id
`)
	if err != nil {
		return nil, fmt.Errorf("list moderator contacts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Contact, 0)
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.UserID, &c.DisplayName, &c.Email, &c.TelegramChatID); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}
