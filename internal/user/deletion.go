// AngelaMos | 2026
// deletion.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codeclash-gg/backend/internal/auth"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
)

// ErrProtectedRole guards moderator and admin accounts from deletion.
// They must be demoted to a plain user first.
var ErrProtectedRole = errors.New("role is protected from deletion")

// DeletionRepos bundles every store the account cascade touches. All
// of them must be bound to the same transaction handle.
type DeletionRepos struct {
	Users              Repository
	Profiles           ProfileRepository
	Stats              StatsRepository
	GameStats          GameStatsRepository
	Activities         ActivityRepository
	LinkedAccounts     LinkedAccountRepository
	EmailOptIns        EmailOptInRepository
	Sessions           auth.Repository
	PasswordResets     auth.PasswordResetRepository
	EmailVerifications auth.EmailVerificationRepository
	Applications       game.ApplicationRepository
	Games              game.GameRepository
}

func NewDeletionRepos(db core.DBTX) DeletionRepos {
	return DeletionRepos{
		Users:              NewRepository(db),
		Profiles:           NewProfileRepository(db),
		Stats:              NewStatsRepository(db),
		GameStats:          NewGameStatsRepository(db),
		Activities:         NewActivityRepository(db),
		LinkedAccounts:     NewLinkedAccountRepository(db),
		EmailOptIns:        NewEmailOptInRepository(db),
		Sessions:           auth.NewRepository(db),
		PasswordResets:     auth.NewPasswordResetRepository(db),
		EmailVerifications: auth.NewEmailVerificationRepository(db),
		Applications:       game.NewApplicationRepository(db),
		Games:              game.NewGameRepository(db),
	}
}

// AccountDeleter removes a user and everything that references the
// user, in one transaction. Applications to games that already ran are
// not dropped silently: the game keeps an anonymized snapshot of the
// player so finished boards stay replayable.
type AccountDeleter struct {
	db     core.TxRunner
	repos  func(db core.DBTX) DeletionRepos
	logger *slog.Logger
}

func NewAccountDeleter(db core.TxRunner, logger *slog.Logger) *AccountDeleter {
	return &AccountDeleter{
		db:     db,
		repos:  NewDeletionRepos,
		logger: logger,
	}
}

// Delete runs the cascade and returns the id of the removed user.
// Nothing is mutated when the user is missing or holds a protected
// role. Any failure along the way rolls the whole cascade back.
func (d *AccountDeleter) Delete(ctx context.Context, userID int64) (int64, error) {
	var (
		rowsPurged   int64
		futureApps   int64
		settledApps  int
		gamesTouched int
	)

	err := d.db.RunInTx(ctx, func(tx core.DBTX) error {
		repos := d.repos(tx)

		u, err := repos.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if u.Role.AtLeast(RoleModerator) {
			return fmt.Errorf("delete user %d: %w", userID, ErrProtectedRole)
		}

		steps := []struct {
			name string
			fn   func(context.Context, int64) (int64, error)
		}{
			{"activities", repos.Activities.DeleteAllForUser},
			{"profile", repos.Profiles.DeleteForUser},
			{"stats", repos.Stats.DeleteForUser},
			{"game stats", repos.GameStats.DeleteAllForUser},
			{"email opt-in", repos.EmailOptIns.DeleteForUser},
			{"linked accounts", repos.LinkedAccounts.DeleteAllForUser},
			{"password resets", repos.PasswordResets.DeleteAllForUser},
			{"email verifications", repos.EmailVerifications.DeleteAllForUser},
			{"sessions", repos.Sessions.DeleteAllForUser},
		}

		for _, step := range steps {
			n, err := step.fn(ctx, userID)
			if err != nil {
				return fmt.Errorf("purge %s: %w", step.name, err)
			}
			rowsPurged += n
		}

		futureApps, err = repos.Applications.DeleteFutureForUser(ctx, userID)
		if err != nil {
			return err
		}

		settled, err := repos.Applications.ListSettledForUser(ctx, userID)
		if err != nil {
			return err
		}
		settledApps = len(settled)

		for _, s := range settled {
			if err := repos.Applications.DetachUser(ctx, s.Application.ID); err != nil {
				return err
			}

			if s.Game != nil {
				if s.Game.Storage.AnonymizeUser(userID) {
					err := repos.Games.UpdateStorage(
						ctx, s.Game.ID, s.Game.Storage)
					if err != nil {
						return err
					}
					gamesTouched++
				}
			}

			if err := repos.Applications.Delete(ctx, s.Application.ID); err != nil {
				return err
			}
		}

		return repos.Users.Delete(ctx, userID)
	})
	if err != nil {
		return 0, err
	}

	d.logger.Info("user account deleted",
		slog.Int64("user_id", userID),
		slog.Int64("rows_purged", rowsPurged),
		slog.Int64("future_applications", futureApps),
		slog.Int("settled_applications", settledApps),
		slog.Int("games_anonymized", gamesTouched),
	)

	return userID, nil
}
