package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

var ErrPetitionNotFound = fmt.Errorf("petition %w", apperr.ErrNotFound)

const petitionColumns = `
	id,
	title,
	description,
	category,
	creator_id,
	status,
	target_signatures,
	current_signatures,
	image_key,
	is_active,
	moderated_by,
	moderator_notes,
	resubmission_history,
	version,
	created_at,
	approved_at,
	rejected_at,
	paused_at,
	deleted_at,
	updated_at`

type PetitionRepo struct {
	pool *pgxpool.Pool
}

func NewPetitionRepo(pool *pgxpool.Pool) *PetitionRepo {
	return &PetitionRepo{pool: pool}
}

func (r *PetitionRepo) Create(ctx context.Context, p model.Petition) error {
	if r.pool == nil {
		return errNilPool
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("petition id is required")
	}

	history, err := marshalHistory(p.ResubmissionHistory)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO petitions (
	id,
	title,
	description,
	category,
	creator_id,
	status,
	target_signatures,
	current_signatures,
	image_key,
	is_active,
	resubmission_history,
	version,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13, $13)
`,
		p.ID,
		p.Title,
		p.Description,
		p.Category,
		p.CreatorID,
		string(p.Status),
		p.TargetSignatures,
		p.CurrentSignatures,
		p.ImageKey,
		p.IsActive,
		history,
		p.Version,
		p.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert petition: %w", err)
	}

	return nil
}

func (r *PetitionRepo) GetByID(ctx context.Context, id string) (model.Petition, error) {
	if r.pool == nil {
		return model.Petition{}, errNilPool
	}

	p, err := scanPetition(r.pool.QueryRow(ctx, `SELECT `+petitionColumns+` FROM petitions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Petition{}, ErrPetitionNotFound
		}
		return model.Petition{}, fmt.Errorf("get petition: %w", err)
	}
	return p, nil
}

// Update writes every mutable column when the stored version still equals
// expectedVersion and returns the row with its bumped version.
func (r *PetitionRepo) Update(ctx context.Context, p model.Petition, expectedVersion int64) (model.Petition, error) {
	if r.pool == nil {
		return model.Petition{}, errNilPool
	}

	history, err := marshalHistory(p.ResubmissionHistory)
	if err != nil {
		return model.Petition{}, err
	}

	updated, err := scanPetition(r.pool.QueryRow(ctx, `
UPDATE petitions
SET
	title = $3,
	description = $4,
	category = $5,
	status = $6,
	target_signatures = $7,
	image_key = $8,
	is_active = $9,
	moderated_by = $10,
	moderator_notes = $11,
	resubmission_history = $12::jsonb,
	approved_at = $13,
	rejected_at = $14,
	paused_at = $15,
	deleted_at = $16,
	updated_at = $17,
	version = version + 1
WHERE id = $1 AND version = $2
RETURNING `+petitionColumns,
		p.ID,
		expectedVersion,
		p.Title,
		p.Description,
		p.Category,
		string(p.Status),
		p.TargetSignatures,
		p.ImageKey,
		p.IsActive,
		p.ModeratedBy,
		p.ModeratorNotes,
		history,
		p.ApprovedAt,
		p.RejectedAt,
		p.PausedAt,
		p.DeletedAt,
		p.UpdatedAt,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Petition{}, fmt.Errorf("update petition: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM petitions WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
		return model.Petition{}, fmt.Errorf("check petition existence: %w", err)
	}
	if !exists {
		return model.Petition{}, ErrPetitionNotFound
	}
	return model.Petition{}, fmt.Errorf("petition %s version %d: %w", p.ID, expectedVersion, apperr.ErrConflict)
}

func (r *PetitionRepo) ListByCreator(ctx context.Context, creatorID string, limit int) ([]model.Petition, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+petitionColumns+`
FROM petitions
WHERE creator_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, creatorID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("list creator petitions: %w", err)
	}
	return collectPetitions(rows)
}

// IncrementSignatures bumps the cached counter inside the signing transaction.
func (r *PetitionRepo) IncrementSignatures(ctx context.Context, tx pgx.Tx, petitionID string) error {
	tag, err := tx.Exec(ctx, `
UPDATE petitions
SET current_signatures = current_signatures + 1, updated_at = NOW()
WHERE id = $1
`, petitionID)
	if err != nil {
		return fmt.Errorf("increment petition signatures: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPetitionNotFound
	}
	return nil
}

// GetForUpdate locks the petition row for the rest of tx.
func (r *PetitionRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, petitionID string) (model.Petition, error) {
	p, err := scanPetition(tx.QueryRow(ctx, `SELECT `+petitionColumns+` FROM petitions WHERE id = $1 FOR UPDATE`, petitionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Petition{}, ErrPetitionNotFound
		}
		return model.Petition{}, fmt.Errorf("lock petition: %w", err)
	}
	return p, nil
}

type SignatureCountAdjustment struct {
	PetitionID string
	Previous   int
	Actual     int
}

// ReconcileSignatureCounts resets current_signatures to the number of stored
// signatures for every petition where the two disagree.
func (r *PetitionRepo) ReconcileSignatureCounts(ctx context.Context) ([]SignatureCountAdjustment, error) {
	if r.pool == nil {
		return nil, errNilPool
	}

	rows, err := r.pool.Query(ctx, `
WITH actual AS (
	SELECT p.id, p.current_signatures AS previous, COUNT(s.id)::int AS counted
	FROM petitions p
	LEFT JOIN signatures s ON s.petition_id = p.id
	GROUP BY p.id, p.current_signatures
)
UPDATE petitions p
SET current_signatures = actual.counted, updated_at = NOW()
FROM actual
WHERE p.id = actual.id AND p.current_signatures <> actual.counted
RETURNING p.id, actual.previous, actual.counted
`)
	if err != nil {
		return nil, fmt.Errorf("reconcile signature counts: %w", err)
	}
	defer rows.Close()

	var out []SignatureCountAdjustment
	for rows.Next() {
		var adj SignatureCountAdjustment
		if err := rows.Scan(&adj.PetitionID, &adj.Previous, &adj.Actual); err != nil {
			return nil, fmt.Errorf("scan signature adjustment: %w", err)
		}
		out = append(out, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signature adjustments: %w", err)
	}
	return out, nil
}

func scanPetition(row pgx.Row) (model.Petition, error) {
	var (
		p       model.Petition
		status  string
		history []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.CreatorID,
		&status,
		&p.TargetSignatures,
		&p.CurrentSignatures,
		&p.ImageKey,
		&p.IsActive,
		&p.ModeratedBy,
		&p.ModeratorNotes,
		&history,
		&p.Version,
		&p.CreatedAt,
		&p.ApprovedAt,
		&p.RejectedAt,
		&p.PausedAt,
		&p.DeletedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.Petition{}, err
	}

	p.Status = enums.PetitionStatus(status)
	p.ResubmissionHistory = []model.ResubmissionEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.ResubmissionHistory); err != nil {
			return model.Petition{}, fmt.Errorf("decode resubmission history: %w", err)
		}
	}
	return p, nil
}

func collectPetitions(rows pgx.Rows) ([]model.Petition, error) {
	defer rows.Close()

	out := make([]model.Petition, 0)
	for rows.Next() {
		p, err := scanPetition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan petition: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate petitions: %w", err)
	}
	return out, nil
}

func marshalHistory(history []model.ResubmissionEntry) (string, error) {
	if history == nil {
		history = []model.ResubmissionEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode resubmission history: %w", err)
	}
	return string(raw), nil
}
