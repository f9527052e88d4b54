// AngelaMos | 2026
// fake_test.go

package auth

import (
	"context"
	"time"

	"github.com/codeclash-gg/backend/internal/core"
)

type FakeTokenRepo struct {
	CreateFunc                   func(ctx context.Context, token *RefreshToken) error
	FindByHashFunc               func(ctx context.Context, tokenHash string) (*RefreshToken, error)
	FindByIDFunc                 func(ctx context.Context, id string) (*RefreshToken, error)
	MarkAsUsedFunc               func(ctx context.Context, id, replacedByID string) error
	RevokeByIDFunc               func(ctx context.Context, id string) error
	RevokeByFamilyIDFunc         func(ctx context.Context, familyID string) error
	RevokeAllForUserFunc         func(ctx context.Context, userID int64) error
	RevokeAllFunc                func(ctx context.Context) (int64, error)
	GetActiveSessionsForUserFunc func(ctx context.Context, userID int64) ([]RefreshToken, error)
	DeleteExpiredFunc            func(ctx context.Context) (int64, error)
	DeleteAllForUserFunc         func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{}
}

func (f *FakeTokenRepo) Create(ctx context.Context, token *RefreshToken) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, token)
	}
	return nil
}

func (f *FakeTokenRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	if f.FindByHashFunc != nil {
		return f.FindByHashFunc(ctx, tokenHash)
	}
	return nil, core.ErrNotFound
}

func (f *FakeTokenRepo) FindByID(
	ctx context.Context,
	id string,
) (*RefreshToken, error) {
	if f.FindByIDFunc != nil {
		return f.FindByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeTokenRepo) MarkAsUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	if f.MarkAsUsedFunc != nil {
		return f.MarkAsUsedFunc(ctx, id, replacedByID)
	}
	return nil
}

func (f *FakeTokenRepo) RevokeByID(ctx context.Context, id string) error {
	if f.RevokeByIDFunc != nil {
		return f.RevokeByIDFunc(ctx, id)
	}
	return nil
}

func (f *FakeTokenRepo) RevokeByFamilyID(
	ctx context.Context,
	familyID string,
) error {
	if f.RevokeByFamilyIDFunc != nil {
		return f.RevokeByFamilyIDFunc(ctx, familyID)
	}
	return nil
}

func (f *FakeTokenRepo) RevokeAllForUser(
	ctx context.Context,
	userID int64,
) error {
	if f.RevokeAllForUserFunc != nil {
		return f.RevokeAllForUserFunc(ctx, userID)
	}
	return nil
}

func (f *FakeTokenRepo) RevokeAll(ctx context.Context) (int64, error) {
	if f.RevokeAllFunc != nil {
		return f.RevokeAllFunc(ctx)
	}
	return 0, nil
}

func (f *FakeTokenRepo) GetActiveSessionsForUser(
	ctx context.Context,
	userID int64,
) ([]RefreshToken, error) {
	if f.GetActiveSessionsForUserFunc != nil {
		return f.GetActiveSessionsForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if f.DeleteExpiredFunc != nil {
		return f.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

func (f *FakeTokenRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeResetRepo struct {
	CreateFunc           func(ctx context.Context, reset *PasswordReset) error
	FindByHashFunc       func(ctx context.Context, tokenHash string) (*PasswordReset, error)
	MarkUsedFunc         func(ctx context.Context, id int64) error
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredFunc    func(ctx context.Context) (int64, error)
}

func NewFakeResetRepo() *FakeResetRepo {
	return &FakeResetRepo{}
}

func (f *FakeResetRepo) Create(
	ctx context.Context,
	reset *PasswordReset,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, reset)
	}
	return nil
}

func (f *FakeResetRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*PasswordReset, error) {
	if f.FindByHashFunc != nil {
		return f.FindByHashFunc(ctx, tokenHash)
	}
	return nil, core.ErrNotFound
}

func (f *FakeResetRepo) MarkUsed(ctx context.Context, id int64) error {
	if f.MarkUsedFunc != nil {
		return f.MarkUsedFunc(ctx, id)
	}
	return nil
}

func (f *FakeResetRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (f *FakeResetRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if f.DeleteExpiredFunc != nil {
		return f.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

type FakeVerificationRepo struct {
	CreateFunc           func(ctx context.Context, verification *EmailVerification) error
	FindByHashFunc       func(ctx context.Context, tokenHash string) (*EmailVerification, error)
	MarkConfirmedFunc    func(ctx context.Context, id int64) error
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredFunc    func(ctx context.Context) (int64, error)
}

func NewFakeVerificationRepo() *FakeVerificationRepo {
	return &FakeVerificationRepo{}
}

func (f *FakeVerificationRepo) Create(
	ctx context.Context,
	verification *EmailVerification,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, verification)
	}
	return nil
}

func (f *FakeVerificationRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*EmailVerification, error) {
	if f.FindByHashFunc != nil {
		return f.FindByHashFunc(ctx, tokenHash)
	}
	return nil, core.ErrNotFound
}

func (f *FakeVerificationRepo) MarkConfirmed(
	ctx context.Context,
	id int64,
) error {
	if f.MarkConfirmedFunc != nil {
		return f.MarkConfirmedFunc(ctx, id)
	}
	return nil
}

func (f *FakeVerificationRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (f *FakeVerificationRepo) DeleteExpired(
	ctx context.Context,
) (int64, error) {
	if f.DeleteExpiredFunc != nil {
		return f.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

type FakeUserProvider struct {
	GetByEmailFunc            func(ctx context.Context, email string) (*UserInfo, error)
	GetByIDFunc               func(ctx context.Context, id int64) (*UserInfo, error)
	CreateFunc                func(ctx context.Context, username, email, passwordHash string) (*UserInfo, error)
	IncrementTokenVersionFunc func(ctx context.Context, userID int64) error
	UpdatePasswordFunc        func(ctx context.Context, userID int64, passwordHash string) error
	RecordSignInFunc          func(ctx context.Context, userID int64) error
	MarkEmailVerifiedFunc     func(ctx context.Context, userID int64) error
}

func NewFakeUserProvider() *FakeUserProvider {
	return &FakeUserProvider{}
}

func (f *FakeUserProvider) GetByEmail(
	ctx context.Context,
	email string,
) (*UserInfo, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserProvider) GetByID(
	ctx context.Context,
	id int64,
) (*UserInfo, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserProvider) Create(
	ctx context.Context,
	username, email, passwordHash string,
) (*UserInfo, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, username, email, passwordHash)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserProvider) IncrementTokenVersion(
	ctx context.Context,
	userID int64,
) error {
	if f.IncrementTokenVersionFunc != nil {
		return f.IncrementTokenVersionFunc(ctx, userID)
	}
	return nil
}

func (f *FakeUserProvider) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	if f.UpdatePasswordFunc != nil {
		return f.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

func (f *FakeUserProvider) RecordSignIn(
	ctx context.Context,
	userID int64,
) error {
	if f.RecordSignInFunc != nil {
		return f.RecordSignInFunc(ctx, userID)
	}
	return nil
}

func (f *FakeUserProvider) MarkEmailVerified(
	ctx context.Context,
	userID int64,
) error {
	if f.MarkEmailVerifiedFunc != nil {
		return f.MarkEmailVerifiedFunc(ctx, userID)
	}
	return nil
}

type FakeDenylist struct {
	RevokeFunc   func(ctx context.Context, jti string, expiresAt time.Time) error
	ContainsFunc func(ctx context.Context, jti string) (bool, error)
}

func NewFakeDenylist() *FakeDenylist {
	return &FakeDenylist{}
}

func (f *FakeDenylist) Revoke(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	if f.RevokeFunc != nil {
		return f.RevokeFunc(ctx, jti, expiresAt)
	}
	return nil
}

func (f *FakeDenylist) Contains(
	ctx context.Context,
	jti string,
) (bool, error) {
	if f.ContainsFunc != nil {
		return f.ContainsFunc(ctx, jti)
	}
	return false, nil
}

type FakeMailer struct {
	SendPasswordResetFunc     func(ctx context.Context, email, token string) error
	SendEmailVerificationFunc func(ctx context.Context, email, token string) error
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

func (f *FakeMailer) SendPasswordReset(
	ctx context.Context,
	email, token string,
) error {
	if f.SendPasswordResetFunc != nil {
		return f.SendPasswordResetFunc(ctx, email, token)
	}
	return nil
}

func (f *FakeMailer) SendEmailVerification(
	ctx context.Context,
	email, token string,
) error {
	if f.SendEmailVerificationFunc != nil {
		return f.SendEmailVerificationFunc(ctx, email, token)
	}
	return nil
}

var (
	_ Repository                  = (*FakeTokenRepo)(nil)
	_ PasswordResetRepository     = (*FakeResetRepo)(nil)
	_ EmailVerificationRepository = (*FakeVerificationRepo)(nil)
	_ UserProvider                = (*FakeUserProvider)(nil)
	_ AccessTokenDenylist         = (*FakeDenylist)(nil)
	_ Mailer                      = (*FakeMailer)(nil)
)
