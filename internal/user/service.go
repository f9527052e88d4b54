// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeclash-gg/backend/internal/auth"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
)

// txRepos are the stores registration and result recording need on a
// shared transaction handle.
type txRepos struct {
	users      Repository
	profiles   ProfileRepository
	stats      StatsRepository
	gameStats  GameStatsRepository
	activities ActivityRepository
	optIns     EmailOptInRepository
}

func newTxRepos(db core.DBTX) txRepos {
	return txRepos{
		users:      NewRepository(db),
		profiles:   NewProfileRepository(db),
		stats:      NewStatsRepository(db),
		gameStats:  NewGameStatsRepository(db),
		activities: NewActivityRepository(db),
		optIns:     NewEmailOptInRepository(db),
	}
}

type Service struct {
	db         core.TxRunner
	repo       Repository
	profiles   ProfileRepository
	stats      StatsRepository
	gameStats  GameStatsRepository
	activities ActivityRepository
	linked     LinkedAccountRepository
	optIns     EmailOptInRepository
	deleter    *AccountDeleter
	repos      func(db core.DBTX) txRepos
}

func NewService(
	db core.TxRunner,
	pool core.DBTX,
	deleter *AccountDeleter,
) *Service {
	return &Service{
		db:         db,
		repo:       NewRepository(pool),
		profiles:   NewProfileRepository(pool),
		stats:      NewStatsRepository(pool),
		gameStats:  NewGameStatsRepository(pool),
		activities: NewActivityRepository(pool),
		linked:     NewLinkedAccountRepository(pool),
		optIns:     NewEmailOptInRepository(pool),
		deleter:    deleter,
		repos:      newTxRepos,
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers an account together with its empty profile, the
// starting stats row, and the default mail preferences. All of it
// lands or none of it does.
func (s *Service) Create(
	ctx context.Context,
	username, email, passwordHash string,
) (*auth.UserInfo, error) {
	user := &User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
	}

	err := s.db.RunInTx(ctx, func(tx core.DBTX) error {
		repos := s.repos(tx)

		if err := repos.users.Create(ctx, user); err != nil {
			return err
		}

		if err := repos.profiles.Create(ctx, &Profile{UserID: user.ID}); err != nil {
			return err
		}

		if err := repos.stats.Create(ctx, user.ID); err != nil {
			return err
		}

		optIn := &EmailOptIn{UserID: user.ID, ProductUpdates: true}
		if err := repos.optIns.Upsert(ctx, optIn); err != nil {
			return err
		}

		return repos.activities.Create(ctx, &Activity{
			UserID: user.ID,
			Action: ActivitySignup,
		})
	})
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID int64,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	return s.activities.Create(ctx, &Activity{
		UserID: userID,
		Action: ActivityPasswordChanged,
	})
}

func (s *Service) RecordSignIn(ctx context.Context, userID int64) error {
	return s.repo.RecordSignIn(ctx, userID)
}

func (s *Service) MarkEmailVerified(ctx context.Context, userID int64) error {
	if err := s.repo.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}

	return s.activities.Create(ctx, &Activity{
		UserID: userID,
		Action: ActivityEmailVerified,
	})
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPublicProfile composes the pieces served on a public user page.
// Profile and stats rows exist for every registered account.
func (s *Service) GetPublicProfile(
	ctx context.Context,
	id int64,
) (*User, *Profile, *Stats, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	profile, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	stats, err := s.stats.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	return user, profile, stats, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Role != "" && !Role(params.Role).Valid() {
		return nil, 0, fmt.Errorf(
			"list users: invalid role %q: %w",
			params.Role,
			core.ErrInvalidInput,
		)
	}

	return s.repo.List(ctx, params)
}

// CountUsersByRole feeds the operator dashboard.
func (s *Service) CountUsersByRole(
	ctx context.Context,
) (map[string]int64, error) {
	return s.repo.CountByRole(ctx)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID int64,
	req UpdateMeRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username == nil || *req.Username == user.Username {
		return user, nil
	}

	oldUsername := user.Username
	user.Username = *req.Username

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	err = s.activities.Create(ctx, &Activity{
		UserID:  userID,
		Action:  ActivityUsernameChanged,
		Details: fmt.Sprintf("%s to %s", oldUsername, user.Username),
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID int64,
	req UpdateProfileRequest,
) (*Profile, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	err = s.activities.Create(ctx, &Activity{
		UserID: userID,
		Action: ActivityProfileUpdated,
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) ListActivities(
	ctx context.Context,
	userID int64,
	limit int,
) ([]Activity, error) {
	return s.activities.ListForUser(ctx, userID, limit)
}

func (s *Service) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	return s.stats.Get(ctx, userID)
}

func (s *Service) ListGameStats(
	ctx context.Context,
	userID int64,
	limit int,
) ([]GameStat, error) {
	return s.gameStats.ListForUser(ctx, userID, limit)
}

func (s *Service) ListLinkedAccounts(
	ctx context.Context,
	userID int64,
) ([]LinkedAccount, error) {
	return s.linked.ListForUser(ctx, userID)
}

func (s *Service) UnlinkAccount(
	ctx context.Context,
	userID int64,
	provider string,
) error {
	return s.linked.DeleteForUserAndProvider(ctx, userID, provider)
}

func (s *Service) GetEmailOptIn(
	ctx context.Context,
	userID int64,
) (*EmailOptIn, error) {
	return s.optIns.Get(ctx, userID)
}

func (s *Service) UpdateEmailOptIn(
	ctx context.Context,
	userID int64,
	req UpdateEmailOptInRequest,
) (*EmailOptIn, error) {
	optIn := &EmailOptIn{
		UserID:             userID,
		ProductUpdates:     req.ProductUpdates,
		EventAnnouncements: req.EventAnnouncements,
		WeeklyDigest:       req.WeeklyDigest,
	}

	if err := s.optIns.Upsert(ctx, optIn); err != nil {
		return nil, err
	}

	return optIn, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id int64,
	role string,
) (*User, error) {
	newRole := Role(role)
	if !newRole.Valid() {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Role == newRole {
		return user, nil
	}

	if err := s.repo.UpdateRole(ctx, id, newRole); err != nil {
		return nil, err
	}

	err = s.activities.Create(ctx, &Activity{
		UserID:  id,
		Action:  ActivityRoleChanged,
		Details: fmt.Sprintf("%s to %s", user.Role, newRole),
	})
	if err != nil {
		return nil, err
	}

	user.Role = newRole

	return user, nil
}

// DeleteAccount removes the target account after an ownership check.
// Only the owner or an admin may trigger it. The protected-role gate
// itself lives in the deleter so it holds under the row lock.
func (s *Service) DeleteAccount(
	ctx context.Context,
	requesterID int64,
	requesterRole string,
	targetID int64,
) (int64, error) {
	if requesterID == 0 {
		return 0, fmt.Errorf("delete account: %w", core.ErrUnauthorized)
	}

	if requesterID != targetID && Role(requesterRole) != RoleAdmin {
		return 0, fmt.Errorf("delete account: %w", core.ErrForbidden)
	}

	return s.deleter.Delete(ctx, targetID)
}

// RecordGameResults writes the per-player rows for a finished game and
// folds each result into the player's aggregates, on the caller's
// transaction.
func (s *Service) RecordGameResults(
	ctx context.Context,
	tx core.DBTX,
	gameID int64,
	results []game.PlayerResult,
) error {
	repos := s.repos(tx)

	for _, res := range results {
		stat := &GameStat{
			UserID:     res.UserID,
			GameID:     gameID,
			Team:       res.Team,
			Result:     res.Result,
			RatingDiff: res.RatingDiff,
		}
		if err := repos.gameStats.Create(ctx, stat); err != nil {
			return err
		}

		err := repos.stats.ApplyResult(ctx, res.UserID, res.Result, res.RatingDiff)
		if err != nil {
			return err
		}
	}

	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		TokenVersion:  u.TokenVersion,
		EmailVerified: u.EmailVerified(),
		CreatedAt:     u.CreatedAt,
	}
}

var (
	_ auth.UserProvider  = (*Service)(nil)
	_ game.StatsRecorder = (*Service)(nil)
)
