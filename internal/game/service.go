// AngelaMos | 2026
// service.go

package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeclash-gg/backend/internal/core"
)

var (
	ErrScheduleClosed    = errors.New("schedule not open for applications")
	ErrInvalidTransition = errors.New("invalid schedule transition")
)

const (
	ratingWinDelta  = 25
	ratingLossDelta = -25
)

// PlayerResult is one participant's outcome in a finished game, handed
// to the stats recorder inside the finishing transaction.
type PlayerResult struct {
	UserID     int64
	Team       string
	Result     string
	RatingDiff int
}

// StatsRecorder persists per-user game outcomes. Implemented outside
// this package so game state and user statistics stay decoupled; the
// recorder runs on the same transaction handle as the finish flow.
type StatsRecorder interface {
	RecordGameResults(
		ctx context.Context,
		tx core.DBTX,
		gameID int64,
		results []PlayerResult,
	) error
}

type Repos struct {
	Games        GameRepository
	Schedules    ScheduleRepository
	Applications ApplicationRepository
}

func NewRepos(db core.DBTX) Repos {
	return Repos{
		Games:        NewGameRepository(db),
		Schedules:    NewScheduleRepository(db),
		Applications: NewApplicationRepository(db),
	}
}

type Service struct {
	db    core.TxRunner
	base  Repos
	repos func(core.DBTX) Repos
	stats StatsRecorder
}

func NewService(
	db core.TxRunner,
	pool core.DBTX,
	stats StatsRecorder,
) *Service {
	return &Service{
		db:    db,
		base:  NewRepos(pool),
		repos: NewRepos,
		stats: stats,
	}
}

func (s *Service) CreateSchedule(
	ctx context.Context,
	createdBy int64,
	req CreateScheduleRequest,
) (*GameSchedule, error) {
	if !req.StartsAt.After(time.Now()) {
		return nil, fmt.Errorf(
			"create schedule: starts_at must be in the future: %w",
			core.ErrInvalidInput,
		)
	}

	schedule := &GameSchedule{
		Title:     req.Title,
		Status:    ScheduleStatusScheduled,
		StartsAt:  req.StartsAt,
		CreatedBy: &createdBy,
	}

	if err := s.base.Schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *Service) GetSchedule(
	ctx context.Context,
	id int64,
) (*GameSchedule, *Game, error) {
	schedule, err := s.base.Schedules.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if schedule.GameID == nil {
		return schedule, nil, nil
	}

	game, err := s.base.Games.GetByID(ctx, *schedule.GameID)
	if err != nil {
		return nil, nil, err
	}

	return schedule, game, nil
}

func (s *Service) ListSchedules(
	ctx context.Context,
	params ListSchedulesParams,
) ([]GameSchedule, int, error) {
	return s.base.Schedules.List(ctx, params)
}

// CountSchedulesByStatus feeds the operator dashboard.
func (s *Service) CountSchedulesByStatus(
	ctx context.Context,
) (map[string]int64, error) {
	return s.base.Schedules.CountByStatus(ctx)
}

func (s *Service) Apply(
	ctx context.Context,
	userID, scheduleID int64,
	team string,
) (*GameApplication, error) {
	schedule, err := s.base.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if !schedule.IsOpen() {
		return nil, fmt.Errorf("apply: %w", ErrScheduleClosed)
	}

	if team == "" {
		team, err = s.pickTeam(ctx, scheduleID)
		if err != nil {
			return nil, err
		}
	}

	app := &GameApplication{
		UserID:     &userID,
		ScheduleID: scheduleID,
		Team:       team,
	}

	if err := s.base.Applications.Create(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// pickTeam balances sides by assigning new applicants to whichever team
// currently has fewer members, blue breaking ties.
func (s *Service) pickTeam(
	ctx context.Context,
	scheduleID int64,
) (string, error) {
	applicants, err := s.base.Applications.ListApplicants(ctx, scheduleID)
	if err != nil {
		return "", err
	}

	blue := 0
	red := 0
	for _, a := range applicants {
		switch a.Team {
		case TeamBlue:
			blue++
		case TeamRed:
			red++
		}
	}

	if red < blue {
		return TeamRed, nil
	}
	return TeamBlue, nil
}

func (s *Service) Withdraw(
	ctx context.Context,
	userID, scheduleID int64,
) error {
	schedule, err := s.base.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	if !schedule.IsOpen() {
		return fmt.Errorf("withdraw: %w", ErrScheduleClosed)
	}

	return s.base.Applications.DeleteForUserAndSchedule(
		ctx,
		userID,
		scheduleID,
	)
}

func (s *Service) ListUserApplications(
	ctx context.Context,
	userID int64,
) ([]UserApplication, error) {
	return s.base.Applications.ListForUser(ctx, userID)
}

// StartSchedule moves a scheduled event live: it creates the backing
// game, snapshots every applicant into the storage document keyed by
// user id, and attaches the game to the schedule. The whole flow runs
// in one transaction.
func (s *Service) StartSchedule(
	ctx context.Context,
	scheduleID int64,
) (*GameSchedule, error) {
	var started *GameSchedule

	err := s.db.RunInTx(ctx, func(tx core.DBTX) error {
		repos := s.repos(tx)

		schedule, err := repos.Schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		if !schedule.Status.CanTransitionTo(ScheduleStatusLive) {
			return fmt.Errorf(
				"start schedule: %s to %s: %w",
				schedule.Status,
				ScheduleStatusLive,
				ErrInvalidTransition,
			)
		}

		applicants, err := repos.Applications.ListApplicants(ctx, scheduleID)
		if err != nil {
			return err
		}

		storage := NewGameStorage()
		for _, a := range applicants {
			storage.AddPlayer(a.UserID, a.Team, a.Username)
		}

		gameEntity := &Game{State: GameStateActive, Storage: storage}
		if err := repos.Games.Create(ctx, gameEntity); err != nil {
			return err
		}

		if err := repos.Schedules.AttachGame(
			ctx,
			scheduleID,
			gameEntity.ID,
		); err != nil {
			return err
		}

		err = repos.Schedules.UpdateStatus(
			ctx,
			scheduleID,
			ScheduleStatusScheduled,
			ScheduleStatusLive,
		)
		if err != nil {
			// The guarded update misses when a concurrent request
			// already moved the schedule.
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("start schedule: %w", ErrInvalidTransition)
			}
			return err
		}

		schedule.Status = ScheduleStatusLive
		schedule.GameID = &gameEntity.ID
		started = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

// FinishSchedule settles a live event: the game is marked completed,
// the schedule finished, and every submitted result is recorded against
// the participants' statistics within the same transaction.
func (s *Service) FinishSchedule(
	ctx context.Context,
	scheduleID int64,
	req FinishScheduleRequest,
) error {
	return s.db.RunInTx(ctx, func(tx core.DBTX) error {
		repos := s.repos(tx)

		schedule, err := repos.Schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		if !schedule.Status.CanTransitionTo(ScheduleStatusFinished) {
			return fmt.Errorf(
				"finish schedule: %s to %s: %w",
				schedule.Status,
				ScheduleStatusFinished,
				ErrInvalidTransition,
			)
		}

		if schedule.GameID == nil {
			return fmt.Errorf(
				"finish schedule: live schedule without game: %w",
				core.ErrInvalidInput,
			)
		}

		gameEntity, err := repos.Games.GetByID(ctx, *schedule.GameID)
		if err != nil {
			return err
		}

		results := make([]PlayerResult, 0, len(req.Results))
		for _, r := range req.Results {
			player, ok := gameEntity.Storage.Player(r.UserID)
			if !ok {
				return fmt.Errorf(
					"finish schedule: user %d not in game: %w",
					r.UserID,
					core.ErrInvalidInput,
				)
			}

			results = append(results, PlayerResult{
				UserID:     r.UserID,
				Team:       player.Team,
				Result:     r.Result,
				RatingDiff: ratingDiff(r.Result),
			})
		}

		if err := repos.Games.UpdateState(
			ctx,
			gameEntity.ID,
			GameStateCompleted,
		); err != nil {
			return err
		}

		err = repos.Schedules.UpdateStatus(
			ctx,
			scheduleID,
			ScheduleStatusLive,
			ScheduleStatusFinished,
		)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("finish schedule: %w", ErrInvalidTransition)
			}
			return err
		}

		if s.stats != nil {
			if err := s.stats.RecordGameResults(
				ctx,
				tx,
				gameEntity.ID,
				results,
			); err != nil {
				return fmt.Errorf("record game results: %w", err)
			}
		}

		return nil
	})
}

func (s *Service) CancelSchedule(ctx context.Context, scheduleID int64) error {
	schedule, err := s.base.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	if !schedule.Status.CanTransitionTo(ScheduleStatusCanceled) {
		return fmt.Errorf(
			"cancel schedule: %s to %s: %w",
			schedule.Status,
			ScheduleStatusCanceled,
			ErrInvalidTransition,
		)
	}

	err = s.base.Schedules.UpdateStatus(
		ctx,
		scheduleID,
		ScheduleStatusScheduled,
		ScheduleStatusCanceled,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("cancel schedule: %w", ErrInvalidTransition)
		}
		return err
	}

	return nil
}

func ratingDiff(result string) int {
	switch result {
	case ResultWon:
		return ratingWinDelta
	case ResultLost:
		return ratingLossDelta
	default:
		return 0
	}
}
