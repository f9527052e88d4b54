// AngelaMos | 2026
// janitor.go

package auth

import (
	"context"
	"log/slog"
	"time"
)

// Janitor sweeps expired tokens out of the store on an interval so the
// auth tables do not grow without bound. Refresh tokens keep a short
// grace window before removal, the one-shot tokens go as soon as they
// lapse.
type Janitor struct {
	sessions      Repository
	resets        PasswordResetRepository
	verifications EmailVerificationRepository
	logger        *slog.Logger
	interval      time.Duration
}

func NewJanitor(
	sessions Repository,
	resets PasswordResetRepository,
	verifications EmailVerificationRepository,
	logger *slog.Logger,
	interval time.Duration,
) *Janitor {
	return &Janitor{
		sessions:      sessions,
		resets:        resets,
		verifications: verifications,
		logger:        logger,
		interval:      interval,
	}
}

// Start launches the sweep loop in its own goroutine. The loop stops
// when ctx is cancelled. A non-positive interval disables the janitor.
func (j *Janitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()
}

// sweep purges each table independently, one failing store does not
// stop the others from being cleaned.
func (j *Janitor) sweep(ctx context.Context) {
	tokens, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "refresh token sweep failed", "error", err)
	}

	resets, err := j.resets.DeleteExpired(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "password reset sweep failed", "error", err)
	}

	verifications, err := j.verifications.DeleteExpired(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "email verification sweep failed",
			"error", err)
	}

	if tokens+resets+verifications > 0 {
		j.logger.InfoContext(ctx, "expired tokens swept",
			"refresh_tokens", tokens,
			"password_resets", resets,
			"email_verifications", verifications,
		)
	}
}
