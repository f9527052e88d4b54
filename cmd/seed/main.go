// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/codeclash-gg/backend/internal/config"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
	"github.com/codeclash-gg/backend/internal/user"
)

// Every seeded account shares this password so anyone on the team can
// sign in as any development user.
const seedPassword = "clash-dev-login"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	userCount := flag.Int("users", 25, "number of users to create")
	scheduleCount := flag.Int("schedules", 6, "number of schedules to create")
	seed := flag.Uint64("seed", 0, "faker seed, 0 picks one at random")
	flag.Parse()

	if err := run(*configPath, *userCount, *scheduleCount, *seed); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // seeding is one long straight-line script
func run(configPath string, userCount, scheduleCount int, seed uint64) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}

	faker := gofakeit.New(seed)

	deleter := user.NewAccountDeleter(db, logger)
	userSvc := user.NewService(db, db.DB, deleter)
	gameSvc := game.NewService(db, db.DB, userSvc)
	linkedAccounts := user.NewLinkedAccountRepository(db.DB)

	// Hashing once is deliberate, argon2 on every account would dominate
	// the whole run.
	passwordHash, err := core.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	type seededUser struct {
		id       int64
		username string
	}

	users := make([]seededUser, 0, userCount)
	for i := 0; i < userCount; i++ {
		username := faker.Gamertag()
		email := strings.ToLower(username) + "@example.dev"

		info, err := userSvc.Create(ctx, username, email, passwordHash)
		if errors.Is(err, core.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", username, err)
		}

		users = append(users, seededUser{id: info.ID, username: info.Username})
	}

	if len(users) < 4 {
		return fmt.Errorf("only %d users created, need at least 4", len(users))
	}

	if _, err := userSvc.UpdateUserRole(ctx, users[0].id, "admin"); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	if _, err := userSvc.UpdateUserRole(ctx, users[1].id, "moderator"); err != nil {
		return fmt.Errorf("promote moderator: %w", err)
	}

	for _, u := range users {
		if faker.Bool() {
			if err := userSvc.MarkEmailVerified(ctx, u.id); err != nil {
				return fmt.Errorf("verify email: %w", err)
			}
		}

		if faker.Bool() {
			fullName := faker.Name()
			bio := faker.Sentence(8)
			location := faker.City()

			_, err := userSvc.UpdateProfile(ctx, u.id, user.UpdateProfileRequest{
				FullName: &fullName,
				Bio:      &bio,
				Location: &location,
			})
			if err != nil {
				return fmt.Errorf("seed profile: %w", err)
			}
		}

		if faker.Number(1, 3) == 1 {
			account := &user.LinkedAccount{
				UserID:      u.id,
				Provider:    faker.RandomString([]string{"github", "gitlab", "discord"}),
				ProviderUID: faker.Numerify("##########"),
			}
			err := linkedAccounts.Create(ctx, account)
			if err != nil && !errors.Is(err, core.ErrDuplicateKey) {
				return fmt.Errorf("seed linked account: %w", err)
			}
		}
	}

	adminID := users[0].id
	seasons := []string{"Rookie", "Masters", "Midnight", "Blitz", "Open"}

	schedules := make([]*game.GameSchedule, 0, scheduleCount)
	for i := 0; i < scheduleCount; i++ {
		schedule, err := gameSvc.CreateSchedule(ctx, adminID, game.CreateScheduleRequest{
			Title:    fmt.Sprintf("%s Cup #%d", faker.RandomString(seasons), i+1),
			StartsAt: time.Now().Add(time.Duration(i+1) * 24 * time.Hour),
		})
		if err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	type entrant struct {
		userID int64
		team   string
	}

	rosters := make([][]entrant, len(schedules))
	for si, schedule := range schedules {
		for _, u := range users {
			if faker.Number(1, 3) > 1 {
				continue
			}

			app, err := gameSvc.Apply(ctx, u.id, schedule.ID, "")
			if err != nil {
				return fmt.Errorf("seed application: %w", err)
			}
			rosters[si] = append(rosters[si], entrant{userID: u.id, team: app.Team})
		}
	}

	// Play out the first two populated schedules so the directory has
	// ratings, per-game stats, and anonymization targets to look at.
	settled := map[int]bool{}
	for si, schedule := range schedules {
		if len(settled) == 2 {
			break
		}
		if len(rosters[si]) < 2 {
			continue
		}

		if _, err := gameSvc.StartSchedule(ctx, schedule.ID); err != nil {
			return fmt.Errorf("start schedule: %w", err)
		}

		winner := faker.RandomString([]string{game.TeamBlue, game.TeamRed})
		results := make([]game.PlayerResultRequest, 0, len(rosters[si]))
		for _, e := range rosters[si] {
			result := game.ResultLost
			if e.team == winner {
				result = game.ResultWon
			}
			results = append(results, game.PlayerResultRequest{
				UserID: e.userID,
				Result: result,
			})
		}

		err := gameSvc.FinishSchedule(ctx, schedule.ID, game.FinishScheduleRequest{
			Results: results,
		})
		if err != nil {
			return fmt.Errorf("finish schedule: %w", err)
		}
		settled[si] = true
	}

	for si := len(schedules) - 1; si >= 0; si-- {
		if settled[si] {
			continue
		}
		if err := gameSvc.CancelSchedule(ctx, schedules[si].ID); err != nil {
			return fmt.Errorf("cancel schedule: %w", err)
		}
		break
	}

	logger.Info("seed complete",
		"users", len(users),
		"admin", users[0].username,
		"moderator", users[1].username,
		"schedules", len(schedules),
		"settled", len(settled),
		"password", seedPassword,
	)

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	return nil
}
