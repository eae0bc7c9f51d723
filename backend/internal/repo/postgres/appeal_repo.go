package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

var ErrAppealNotFound = fmt.Errorf("appeal %w", apperr.ErrNotFound)

const openAppealConstraint = "uq_appeals_open_per_petition"

const appealColumns = `
	id,
	petition_id,
	petition_title,
	creator_id,
	creator_name,
	creator_email,
	status,
	messages,
	status_history,
	version,
	created_at,
	updated_at,
	resolved_at,
	resolved_by,
	resolution_note`

type AppealRepo struct {
	pool *pgxpool.Pool
}

type AppealFilter struct {
	CreatorID string
	Status    enums.AppealStatus
	Limit     int
	// Before keeps only appeals created strictly earlier.
	Before *time.Time
}

func NewAppealRepo(pool *pgxpool.Pool) *AppealRepo {
	return &AppealRepo{pool: pool}
}

func (r *AppealRepo) Create(ctx context.Context, a model.Appeal) error {
	if r.pool == nil {
		return errNilPool
	}

	messages, history, err := marshalThread(a)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO appeals (
	id,
	petition_id,
	petition_title,
	creator_id,
	creator_name,
	creator_email,
	status,
	messages,
	status_history,
	version,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11, $12)
`,
		a.ID,
		a.PetitionID,
		a.PetitionTitle,
		a.CreatorID,
		a.CreatorName,
		a.CreatorEmail,
		string(a.Status),
		messages,
		history,
		a.Version,
		a.CreatedAt,
		a.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err, openAppealConstraint) {
			return fmt.Errorf("petition %s: %w", a.PetitionID, apperr.ErrDuplicateOpenAppeal)
		}
		return fmt.Errorf("insert appeal: %w", err)
	}
	return nil
}

func (r *AppealRepo) GetByID(ctx context.Context, id string) (model.Appeal, error) {
	if r.pool == nil {
		return model.Appeal{}, errNilPool
	}

	a, err := scanAppeal(r.pool.QueryRow(ctx, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appeal{}, ErrAppealNotFound
		}
		return model.Appeal{}, fmt.Errorf("get appeal: %w", err)
	}
	return a, nil
}

func (r *AppealRepo) HasOpenForPetition(ctx context.Context, petitionID string) (bool, error) {
	if r.pool == nil {
		return false, errNilPool
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM appeals
	WHERE petition_id = $1 AND status IN ('pending', 'in-progress')
)
`, petitionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open appeal: %w", err)
	}
	return exists, nil
}

// Update rewrites the thread and status fields under optimistic concurrency.
func (r *AppealRepo) Update(ctx context.Context, a model.Appeal, expectedVersion int64) (model.Appeal, error) {
	if r.pool == nil {
		return model.Appeal{}, errNilPool
	}

	messages, history, err := marshalThread(a)
	if err != nil {
		return model.Appeal{}, err
	}

	updated, err := scanAppeal(r.pool.QueryRow(ctx, `
UPDATE appeals
SET
	status = $3,
	messages = $4::jsonb,
	status_history = $5::jsonb,
	updated_at = $6,
	resolved_at = $7,
	resolved_by = $8,
	resolution_note = $9,
	version = version + 1
WHERE id = $1 AND version = $2
RETURNING `+appealColumns,
		a.ID,
		expectedVersion,
		string(a.Status),
		messages,
		history,
		a.UpdatedAt,
		a.ResolvedAt,
		a.ResolvedBy,
		a.ResolutionNote,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Appeal{}, fmt.Errorf("update appeal: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appeals WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
		return model.Appeal{}, fmt.Errorf("check appeal existence: %w", err)
	}
	if !exists {
		return model.Appeal{}, ErrAppealNotFound
	}
	return model.Appeal{}, fmt.Errorf("appeal %s version %d: %w", a.ID, expectedVersion, apperr.ErrConflict)
}

// List returns appeals newest first. An empty CreatorID lists every creator.
func (r *AppealRepo) List(ctx context.Context, filter AppealFilter) ([]model.Appeal, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	var (
		where []string
		args  []any
	)
	if creator := strings.TrimSpace(filter.CreatorID); creator != "" {
		args = append(args, creator)
		where = append(where, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Before != nil {
		args = append(args, *filter.Before)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	args = append(args, clampLimit(filter.Limit, DefaultListLimit, MaxListLimit))

	query := `SELECT ` + appealColumns + ` FROM appeals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appeals: %w", err)
	}
	defer rows.Close()

	out := make([]model.Appeal, 0)
	for rows.Next() {
		a, err := scanAppeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appeal: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appeals: %w", err)
	}
	return out, nil
}

func scanAppeal(row pgx.Row) (model.Appeal, error) {
	var (
		a        model.Appeal
		status   string
		messages []byte
		history  []byte
	)
	err := row.Scan(
		&a.ID,
		&a.PetitionID,
		&a.PetitionTitle,
		&a.CreatorID,
		&a.CreatorName,
		&a.CreatorEmail,
		&status,
		&messages,
		&history,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.ResolvedAt,
		&a.ResolvedBy,
		&a.ResolutionNote,
	)
	if err != nil {
		return model.Appeal{}, err
	}

	a.Status = enums.AppealStatus(status)
	a.Messages = []model.AppealMessage{}
	a.StatusHistory = []model.AppealStatusChange{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &a.Messages); err != nil {
			return model.Appeal{}, fmt.Errorf("decode appeal messages: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.StatusHistory); err != nil {
			return model.Appeal{}, fmt.Errorf("decode appeal status history: %w", err)
		}
	}
	return a, nil
}

func marshalThread(a model.Appeal) (string, string, error) {
	messages := a.Messages
	if messages == nil {
		messages = []model.AppealMessage{}
	}
	history := a.StatusHistory
	if history == nil {
		history = []model.AppealStatusChange{}
	}

	rawMessages, err := json.Marshal(messages)
	if err != nil {
		return "", "", fmt.Errorf("encode appeal messages: %w", err)
	}
	rawHistory, err := json.Marshal(history)
	if err != nil {
		return "", "", fmt.Errorf("encode appeal status history: %w", err)
	}
	return string(rawMessages), string(rawHistory), nil
}
