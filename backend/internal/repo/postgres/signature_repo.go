package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type SignatureRepo struct {
	pool *pgxpool.Pool
}

func NewSignatureRepo(pool *pgxpool.Pool) *SignatureRepo {
	return &SignatureRepo{pool: pool}
}

func (r *SignatureRepo) Insert(ctx context.Context, tx pgx.Tx, sig model.Signature) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO signatures (
	id,
	petition_id,
	signer_name,
	signer_phone,
	signer_user_id,
	verification_method,
	verified_at,
	comment,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`,
		sig.ID,
		sig.PetitionID,
		sig.SignerName,
		sig.SignerPhone,
		sig.SignerUserID,
		string(sig.VerificationMethod),
		sig.VerifiedAt,
		sig.Comment,
		sig.CreatedAt,
	); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("petition %s: %w", sig.PetitionID, apperr.ErrDuplicateSignature)
		}
		return fmt.Errorf("insert signature: %w", err)
	}
	return nil
}

func (r *SignatureRepo) CountByPetition(ctx context.Context, petitionID string) (int, error) {
	if r.pool == nil {
		return 0, errNilPool
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM signatures
WHERE petition_id = $1
`, petitionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count signatures: %w", err)
	}
	return count, nil
}
