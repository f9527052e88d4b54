// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeclash-gg/backend/internal/config"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrAccountExists      = errors.New("account already exists")
)

// UserInfo is the slice of a user account the auth flows need. The
// user package implements UserProvider over its own storage.
type UserInfo struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	Role          string
	TokenVersion  int
	EmailVerified bool
	CreatedAt     time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(
		ctx context.Context,
		username, email, passwordHash string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID int64) error
	UpdatePassword(
		ctx context.Context,
		userID int64,
		passwordHash string,
	) error
	RecordSignIn(ctx context.Context, userID int64) error
	MarkEmailVerified(ctx context.Context, userID int64) error
}

type Service struct {
	repo            Repository
	resets          PasswordResetRepository
	verifications   EmailVerificationRepository
	jwt             *JWTManager
	userProvider    UserProvider
	mailer          Mailer
	denylist        AccessTokenDenylist
	resetTTL        time.Duration
	verificationTTL time.Duration
}

func NewService(
	repo Repository,
	resets PasswordResetRepository,
	verifications EmailVerificationRepository,
	jwt *JWTManager,
	userProvider UserProvider,
	mailer Mailer,
	denylist AccessTokenDenylist,
	cfg config.AuthConfig,
) *Service {
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	verificationTTL := cfg.EmailVerificationTTL
	if verificationTTL <= 0 {
		verificationTTL = 24 * time.Hour
	}

	return &Service{
		repo:            repo,
		resets:          resets,
		verifications:   verifications,
		jwt:             jwt,
		userProvider:    userProvider,
		mailer:          mailer,
		denylist:        denylist,
		resetTTL:        resetTTL,
		verificationTTL: verificationTTL,
	}
}

// The service is what the auth middleware verifies tokens through, so
// revocation is enforced on every request, not just at refresh time.
var _ middleware.TokenVerifier = (*Service)(nil)

// VerifyAccessToken layers the revocation checks over the signature
// check: the denylist catches tokens voided by a single logout, the
// token version catches everything voided account wide.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// A denylist read error fails open. Access tokens outlive a redis
	// outage by at most their remaining lifetime.
	if revoked, err := s.denylist.Contains(ctx, claims.TokenID); err == nil &&
		revoked {
		return nil, fmt.Errorf("verify access token: %w", core.ErrTokenRevoked)
	}

	if err := s.ValidateTokenVersion(
		ctx,
		claims.UserID,
		claims.TokenVersion,
	); err != nil {
		return nil, err
	}

	return claims, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	//nolint:errcheck // sign-in bookkeeping never blocks a login
	_ = s.userProvider.RecordSignIn(ctx, user.ID)

	return s.createAuthResponse(ctx, user, userAgent, ipAddress, "", nil)
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(
		ctx,
		req.Username,
		req.Email,
		passwordHash,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	//nolint:errcheck // the verification mail can be re-requested later
	_ = s.sendEmailVerification(ctx, user)

	return s.createAuthResponse(ctx, user, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		user,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

// Logout revokes one session's refresh token and denylists the access
// token presented with the request. Other sessions stay signed in.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, accessToken string,
	userID int64,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.denylistAccessToken(ctx, accessToken)

	return nil
}

// denylistAccessToken voids the access token a logout was made with.
// Revoking the refresh token above is what ends the session, so a
// failure here is not surfaced.
func (s *Service) denylistAccessToken(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return
	}

	//nolint:errcheck // best-effort, the token ages out on its own
	_ = s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

// LogoutAll revokes every refresh token the account holds and bumps
// the token version, which invalidates all outstanding access tokens
// at the next verification.
func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

// InvalidateAllSessions revokes every live refresh token in the store.
// Outstanding access tokens age out within their expiry window.
func (s *Service) InvalidateAllSessions(ctx context.Context) error {
	if _, err := s.repo.RevokeAll(ctx); err != nil {
		return fmt.Errorf("invalidate all sessions: %w", err)
	}
	return nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID int64,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID int64,
	sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID int64,
	currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

// RequestPasswordReset mails a single-use reset token. An unknown
// address still reports success, the endpoint must not confirm which
// emails exist.
func (s *Service) RequestPasswordReset(
	ctx context.Context,
	email string,
) error {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := core.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	reset := &PasswordReset{
		UserID:    user.ID,
		TokenHash: core.HashToken(token),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("store password reset: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token and replaces the
// password. The token is claimed through a guarded update before the
// password changes, a second confirmation with the same token loses.
// Every live session is revoked afterwards.
func (s *Service) ConfirmPasswordReset(
	ctx context.Context,
	token, newPassword string,
) error {
	reset, err := s.resets.FindByHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("confirm reset: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("find password reset: %w", err)
	}

	if reset.IsExpired() {
		return fmt.Errorf("confirm reset: %w", core.ErrTokenExpired)
	}

	if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("confirm reset: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("mark reset used: %w", err)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.userProvider.UpdatePassword(ctx, reset.UserID, newHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, reset.UserID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

// RequestEmailVerification mails a fresh confirmation token. Accounts
// that already verified their address get a silent no-op.
func (s *Service) RequestEmailVerification(
	ctx context.Context,
	userID int64,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	return s.sendEmailVerification(ctx, user)
}

func (s *Service) ConfirmEmailVerification(
	ctx context.Context,
	token string,
) error {
	verification, err := s.verifications.FindByHash(
		ctx,
		core.HashToken(token),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("confirm verification: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("find email verification: %w", err)
	}

	if verification.IsExpired() {
		return fmt.Errorf("confirm verification: %w", core.ErrTokenExpired)
	}

	if err := s.verifications.MarkConfirmed(ctx, verification.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("confirm verification: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("mark verification confirmed: %w", err)
	}

	err = s.userProvider.MarkEmailVerified(ctx, verification.UserID)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	return nil
}

func (s *Service) sendEmailVerification(
	ctx context.Context,
	user *UserInfo,
) error {
	token, err := core.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	verification := &EmailVerification{
		UserID:    user.ID,
		TokenHash: core.HashToken(token),
		ExpiresAt: time.Now().Add(s.verificationTTL),
	}
	if err := s.verifications.Create(ctx, verification); err != nil {
		return fmt.Errorf("store email verification: %w", err)
	}

	err = s.mailer.SendEmailVerification(ctx, user.Email, token)
	if err != nil {
		return fmt.Errorf("send email verification: %w", err)
	}

	return nil
}

func (s *Service) ValidateTokenVersion(
	ctx context.Context,
	userID int64,
	tokenVersion int,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if tokenVersion < user.TokenVersion {
		return fmt.Errorf("validate token version: %w", core.ErrTokenRevoked)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := toAuthUserResponse(user)
	return &response, nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	accessTTL := s.jwt.AccessTokenTTL()

	return &AuthResponse{
		User: toAuthUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(accessTTL / time.Second),
			ExpiresAt:    time.Now().Add(accessTTL),
		},
	}, nil
}

func toAuthUserResponse(user *UserInfo) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}
