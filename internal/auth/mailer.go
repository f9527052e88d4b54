// AngelaMos | 2026
// mailer.go

package auth

import (
	"context"
	"log/slog"
)

// Mailer delivers the two single-use tokens the auth flows email out.
// The plaintext token goes to the mailer and is never stored.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendEmailVerification(ctx context.Context, email, token string) error
}

// LogMailer writes outbound mail to the log instead of a relay.
// Deployments without a mail provider keep the token flows usable, the
// operator reads the token out of the log.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(
	ctx context.Context,
	email, token string,
) error {
	m.logger.InfoContext(ctx, "password reset mail",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

func (m *LogMailer) SendEmailVerification(
	ctx context.Context,
	email, token string,
) error {
	m.logger.InfoContext(ctx, "email verification mail",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
