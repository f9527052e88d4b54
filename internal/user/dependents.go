// AngelaMos | 2026
// dependents.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codeclash-gg/backend/internal/core"
)

// Repositories for rows that hang off a user. Each exposes a purge
// method so the account deleter can clear them before the user row
// goes. Purges report how many rows went away and treat zero as fine.

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	Get(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
}

type StatsRepository interface {
	Create(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*Stats, error)
	ApplyResult(ctx context.Context, userID int64, result string, ratingDiff int) error
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
}

type GameStatsRepository interface {
	Create(ctx context.Context, stat *GameStat) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]GameStat, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]Activity, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

type LinkedAccountRepository interface {
	Create(ctx context.Context, account *LinkedAccount) error
	ListForUser(ctx context.Context, userID int64) ([]LinkedAccount, error)
	DeleteForUserAndProvider(ctx context.Context, userID int64, provider string) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

type EmailOptInRepository interface {
	Upsert(ctx context.Context, optIn *EmailOptIn) error
	Get(ctx context.Context, userID int64) (*EmailOptIn, error)
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
}

type profileRepository struct {
	db core.DBTX
}

func NewProfileRepository(db core.DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(
	ctx context.Context,
	profile *Profile,
) error {
	query := `
		INSERT INTO user_profiles (user_id, full_name, bio, avatar_url, location, website)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, profile, query,
		profile.UserID,
		profile.FullName,
		profile.Bio,
		profile.AvatarURL,
		profile.Location,
		profile.Website,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

func (r *profileRepository) Get(
	ctx context.Context,
	userID int64,
) (*Profile, error) {
	query := `
		SELECT user_id, full_name, bio, avatar_url, location, website,
		       created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Update(
	ctx context.Context,
	profile *Profile,
) error {
	query := `
		UPDATE user_profiles
		SET full_name = $2, bio = $3, avatar_url = $4, location = $5,
		    website = $6, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &profile.UpdatedAt, query,
		profile.UserID,
		profile.FullName,
		profile.Bio,
		profile.AvatarURL,
		profile.Location,
		profile.Website,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *profileRepository) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "user_profiles", userID)
}

type statsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Create(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_stats (user_id, rating)
		VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, initialRating); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create stats: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create stats: %w", err)
	}

	return nil
}

func (r *statsRepository) Get(
	ctx context.Context,
	userID int64,
) (*Stats, error) {
	query := `
		SELECT user_id, games_played, wins, losses, draws, rating, updated_at
		FROM user_stats
		WHERE user_id = $1`

	var stats Stats
	err := r.db.GetContext(ctx, &stats, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get stats: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	return &stats, nil
}

// ApplyResult folds one finished game into the aggregate counters.
// Rating never drops below zero.
func (r *statsRepository) ApplyResult(
	ctx context.Context,
	userID int64,
	result string,
	ratingDiff int,
) error {
	query := `
		UPDATE user_stats
		SET games_played = games_played + 1,
		    wins = wins + CASE WHEN $2 = 'won' THEN 1 ELSE 0 END,
		    losses = losses + CASE WHEN $2 = 'lost' THEN 1 ELSE 0 END,
		    draws = draws + CASE WHEN $2 = 'drawn' THEN 1 ELSE 0 END,
		    rating = GREATEST(0, rating + $3),
		    updated_at = NOW()
		WHERE user_id = $1`

	result2, err := r.db.ExecContext(ctx, query, userID, result, ratingDiff)
	if err != nil {
		return fmt.Errorf("apply result: %w", err)
	}

	rows, err := result2.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply result: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("apply result: %w", core.ErrNotFound)
	}

	return nil
}

func (r *statsRepository) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "user_stats", userID)
}

type gameStatsRepository struct {
	db core.DBTX
}

func NewGameStatsRepository(db core.DBTX) GameStatsRepository {
	return &gameStatsRepository{db: db}
}

func (r *gameStatsRepository) Create(
	ctx context.Context,
	stat *GameStat,
) error {
	query := `
		INSERT INTO user_game_stats (user_id, game_id, team, result, rating_diff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, stat, query,
		stat.UserID,
		stat.GameID,
		stat.Team,
		stat.Result,
		stat.RatingDiff,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create game stat: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create game stat: %w", err)
	}

	return nil
}

func (r *gameStatsRepository) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]GameStat, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, user_id, game_id, team, result, rating_diff, created_at
		FROM user_game_stats
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var stats []GameStat
	if err := r.db.SelectContext(ctx, &stats, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list game stats: %w", err)
	}

	return stats, nil
}

func (r *gameStatsRepository) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "user_game_stats", userID)
}

type activityRepository struct {
	db core.DBTX
}

func NewActivityRepository(db core.DBTX) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(
	ctx context.Context,
	activity *Activity,
) error {
	query := `
		INSERT INTO activities (user_id, action, details)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, activity, query,
		activity.UserID,
		activity.Action,
		activity.Details,
	)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

func (r *activityRepository) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]Activity, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, user_id, action, details, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var activities []Activity
	err := r.db.SelectContext(ctx, &activities, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return activities, nil
}

func (r *activityRepository) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "activities", userID)
}

type linkedAccountRepository struct {
	db core.DBTX
}

func NewLinkedAccountRepository(db core.DBTX) LinkedAccountRepository {
	return &linkedAccountRepository{db: db}
}

func (r *linkedAccountRepository) Create(
	ctx context.Context,
	account *LinkedAccount,
) error {
	query := `
		INSERT INTO linked_accounts (user_id, provider, provider_uid)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, account, query,
		account.UserID,
		account.Provider,
		account.ProviderUID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create linked account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create linked account: %w", err)
	}

	return nil
}

func (r *linkedAccountRepository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]LinkedAccount, error) {
	query := `
		SELECT id, user_id, provider, provider_uid, created_at
		FROM linked_accounts
		WHERE user_id = $1
		ORDER BY created_at`

	var accounts []LinkedAccount
	if err := r.db.SelectContext(ctx, &accounts, query, userID); err != nil {
		return nil, fmt.Errorf("list linked accounts: %w", err)
	}

	return accounts, nil
}

func (r *linkedAccountRepository) DeleteForUserAndProvider(
	ctx context.Context,
	userID int64,
	provider string,
) error {
	query := `DELETE FROM linked_accounts WHERE user_id = $1 AND provider = $2`

	result, err := r.db.ExecContext(ctx, query, userID, provider)
	if err != nil {
		return fmt.Errorf("delete linked account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete linked account: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete linked account: %w", core.ErrNotFound)
	}

	return nil
}

func (r *linkedAccountRepository) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "linked_accounts", userID)
}

type emailOptInRepository struct {
	db core.DBTX
}

func NewEmailOptInRepository(db core.DBTX) EmailOptInRepository {
	return &emailOptInRepository{db: db}
}

func (r *emailOptInRepository) Upsert(
	ctx context.Context,
	optIn *EmailOptIn,
) error {
	query := `
		INSERT INTO email_opt_ins (user_id, product_updates, event_announcements, weekly_digest)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET product_updates = EXCLUDED.product_updates,
		    event_announcements = EXCLUDED.event_announcements,
		    weekly_digest = EXCLUDED.weekly_digest,
		    updated_at = NOW()
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &optIn.UpdatedAt, query,
		optIn.UserID,
		optIn.ProductUpdates,
		optIn.EventAnnouncements,
		optIn.WeeklyDigest,
	)
	if err != nil {
		return fmt.Errorf("upsert email opt-in: %w", err)
	}

	return nil
}

func (r *emailOptInRepository) Get(
	ctx context.Context,
	userID int64,
) (*EmailOptIn, error) {
	query := `
		SELECT user_id, product_updates, event_announcements, weekly_digest,
		       updated_at
		FROM email_opt_ins
		WHERE user_id = $1`

	var optIn EmailOptIn
	err := r.db.GetContext(ctx, &optIn, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get email opt-in: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get email opt-in: %w", err)
	}

	return &optIn, nil
}

func (r *emailOptInRepository) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	return purgeForUser(ctx, r.db, "email_opt_ins", userID)
}

// purgeForUser deletes every row the table holds for the user. The
// table name is always a compile-time constant from this package.
func purgeForUser(
	ctx context.Context,
	db core.DBTX,
	table string,
	userID int64,
) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", table)

	result, err := db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", table, err)
	}

	return rows, nil
}
