package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

type AuditFilter struct {
	TargetType enums.AuditTarget
	TargetID   string
	Limit      int
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Append(ctx context.Context, entry model.AuditEntry) error {
	if r.pool == nil {
		return errNilPool
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO audit_logs (
	id,
	actor_id,
	actor_name,
	actor_email,
	actor_role,
	action,
	target_type,
	target_id,
	target_name,
	details,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)
`,
		entry.ID,
		entry.ActorID,
		entry.ActorName,
		entry.ActorEmail,
		string(entry.ActorRole),
		string(entry.Action),
		string(entry.TargetType),
		entry.TargetID,
		entry.TargetName,
		string(details),
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter AuditFilter) ([]model.AuditEntry, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	var (
		where []string
		args  []any
	)
	if filter.TargetType != "" {
		args = append(args, string(filter.TargetType))
		where = append(where, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if id := strings.TrimSpace(filter.TargetID); id != "" {
		args = append(args, id)
		where = append(where, fmt.Sprintf("target_id = $%d", len(args)))
	}
	args = append(args, clampLimit(filter.Limit, 50, 500))

	query := `
SELECT id, actor_id, actor_name, actor_email, actor_role, action, target_type, target_id, target_name, details, created_at
FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.AuditEntry, 0)
	for rows.Next() {
		var (
			entry                    model.AuditEntry
			role, action, targetType string
			details                  []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorName,
			&entry.ActorEmail,
			&role,
			&action,
			&targetType,
			&entry.TargetID,
			&entry.TargetName,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ActorRole = enums.Role(role)
		entry.Action = enums.AuditAction(action)
		entry.TargetType = enums.AuditTarget(targetType)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}
