// AngelaMos | 2026
// tokens.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codeclash-gg/backend/internal/core"
)

// Stores for the two emailed one-shot tokens. Both keep only hashes,
// the plaintext token lives in the email and nowhere else.

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *PasswordReset) error
	FindByHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	MarkUsed(ctx context.Context, id int64) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type EmailVerificationRepository interface {
	Create(ctx context.Context, verification *EmailVerification) error
	FindByHash(ctx context.Context, tokenHash string) (*EmailVerification, error)
	MarkConfirmed(ctx context.Context, id int64) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type passwordResetRepository struct {
	db core.DBTX
}

func NewPasswordResetRepository(db core.DBTX) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(
	ctx context.Context,
	reset *PasswordReset,
) error {
	query := `
		INSERT INTO password_resets (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, reset, query,
		reset.UserID,
		reset.TokenHash,
		reset.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}

	return nil
}

func (r *passwordResetRepository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, used_at
		FROM password_resets
		WHERE token_hash = $1`

	var reset PasswordReset
	err := r.db.GetContext(ctx, &reset, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find password reset: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find password reset: %w", err)
	}

	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(
	ctx context.Context,
	id int64,
) error {
	query := `
		UPDATE password_resets
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark password reset used: %w", core.ErrNotFound)
	}

	return nil
}

func (r *passwordResetRepository) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	query := `DELETE FROM password_resets WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete password resets: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete password resets: %w", err)
	}

	return rows, nil
}

func (r *passwordResetRepository) DeleteExpired(
	ctx context.Context,
) (int64, error) {
	query := `DELETE FROM password_resets WHERE expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge expired password resets: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired password resets: %w", err)
	}

	return rows, nil
}

type emailVerificationRepository struct {
	db core.DBTX
}

func NewEmailVerificationRepository(db core.DBTX) EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

func (r *emailVerificationRepository) Create(
	ctx context.Context,
	verification *EmailVerification,
) error {
	query := `
		INSERT INTO email_verifications (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, verification, query,
		verification.UserID,
		verification.TokenHash,
		verification.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create email verification: %w", err)
	}

	return nil
}

func (r *emailVerificationRepository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*EmailVerification, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, confirmed_at
		FROM email_verifications
		WHERE token_hash = $1`

	var verification EmailVerification
	err := r.db.GetContext(ctx, &verification, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find email verification: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find email verification: %w", err)
	}

	return &verification, nil
}

func (r *emailVerificationRepository) MarkConfirmed(
	ctx context.Context,
	id int64,
) error {
	query := `
		UPDATE email_verifications
		SET confirmed_at = NOW()
		WHERE id = $1 AND confirmed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark email verification confirmed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email verification confirmed: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf(
			"mark email verification confirmed: %w", core.ErrNotFound)
	}

	return nil
}

func (r *emailVerificationRepository) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	query := `DELETE FROM email_verifications WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete email verifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete email verifications: %w", err)
	}

	return rows, nil
}

func (r *emailVerificationRepository) DeleteExpired(
	ctx context.Context,
) (int64, error) {
	query := `DELETE FROM email_verifications WHERE expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge expired email verifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired email verifications: %w", err)
	}

	return rows, nil
}
