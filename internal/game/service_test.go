// AngelaMos | 2026
// service_test.go

package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash-gg/backend/internal/core"
)

type serviceFakes struct {
	db        *FakeDB
	games     *FakeGameRepo
	schedules *FakeScheduleRepo
	apps      *FakeApplicationRepo
	stats     *FakeStatsRecorder
}

func newServiceFakes() *serviceFakes {
	return &serviceFakes{
		db:        &FakeDB{},
		games:     NewFakeGameRepo(),
		schedules: NewFakeScheduleRepo(),
		apps:      NewFakeApplicationRepo(),
		stats:     &FakeStatsRecorder{},
	}
}

func (f *serviceFakes) service() *Service {
	repos := Repos{
		Games:        f.games,
		Schedules:    f.schedules,
		Applications: f.apps,
	}
	return &Service{
		db:    f.db,
		base:  repos,
		repos: func(core.DBTX) Repos { return repos },
		stats: f.stats,
	}
}

func scheduledEvent(id int64) *GameSchedule {
	return &GameSchedule{
		ID:       id,
		Title:    "Friday Night Clash",
		Status:   ScheduleStatusScheduled,
		StartsAt: time.Now().Add(time.Hour),
	}
}

func TestServiceCreateSchedule(t *testing.T) {
	t.Run("accepts a future event", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.CreateFunc = func(ctx context.Context, s *GameSchedule) error {
			s.ID = 3
			return nil
		}

		startsAt := time.Now().Add(24 * time.Hour)
		schedule, err := svc.CreateSchedule(context.Background(), 42, CreateScheduleRequest{
			Title:    "Friday Night Clash",
			StartsAt: startsAt,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), schedule.ID)
		assert.Equal(t, ScheduleStatusScheduled, schedule.Status)
		require.NotNil(t, schedule.CreatedBy)
		assert.Equal(t, int64(42), *schedule.CreatedBy)
	})

	t.Run("rejects a start in the past", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		creates := 0
		f.schedules.CreateFunc = func(ctx context.Context, s *GameSchedule) error {
			creates++
			return nil
		}

		_, err := svc.CreateSchedule(context.Background(), 42, CreateScheduleRequest{
			Title:    "Friday Night Clash",
			StartsAt: time.Now().Add(-time.Hour),
		})

		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.Zero(t, creates)
	})
}

func TestServiceGetSchedule(t *testing.T) {
	t.Run("without a game", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return scheduledEvent(id), nil
		}

		schedule, gameEntity, err := svc.GetSchedule(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, int64(3), schedule.ID)
		assert.Nil(t, gameEntity)
	})

	t.Run("with an attached game", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		gameID := int64(5)
		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			s := scheduledEvent(id)
			s.Status = ScheduleStatusLive
			s.GameID = &gameID
			return s, nil
		}
		f.games.GetByIDFunc = func(ctx context.Context, id int64) (*Game, error) {
			return &Game{ID: id, State: GameStateActive}, nil
		}

		_, gameEntity, err := svc.GetSchedule(context.Background(), 3)

		require.NoError(t, err)
		require.NotNil(t, gameEntity)
		assert.Equal(t, int64(5), gameEntity.ID)
	})
}

func TestServiceApply(t *testing.T) {
	t.Run("records an application with the requested team", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return scheduledEvent(id), nil
		}

		var created *GameApplication
		f.apps.CreateFunc = func(ctx context.Context, app *GameApplication) error {
			app.ID = 31
			created = app
			return nil
		}

		app, err := svc.Apply(context.Background(), 42, 3, TeamRed)

		require.NoError(t, err)
		assert.Equal(t, int64(31), app.ID)
		require.NotNil(t, created.UserID)
		assert.Equal(t, int64(42), *created.UserID)
		assert.Equal(t, int64(3), created.ScheduleID)
		assert.Equal(t, TeamRed, created.Team)
	})

	t.Run("refuses once the schedule left the open state", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			s := scheduledEvent(id)
			s.Status = ScheduleStatusLive
			return s, nil
		}

		creates := 0
		f.apps.CreateFunc = func(ctx context.Context, app *GameApplication) error {
			creates++
			return nil
		}

		_, err := svc.Apply(context.Background(), 42, 3, TeamRed)

		assert.ErrorIs(t, err, ErrScheduleClosed)
		assert.Zero(t, creates)
	})
}

func TestServiceApplyBalancesTeams(t *testing.T) {
	tests := []struct {
		name       string
		applicants []Applicant
		wantTeam   string
	}{
		{
			name:     "first applicant goes blue",
			wantTeam: TeamBlue,
		},
		{
			name: "tie goes blue",
			applicants: []Applicant{
				{UserID: 1, Team: TeamBlue, Username: "a"},
				{UserID: 2, Team: TeamRed, Username: "b"},
			},
			wantTeam: TeamBlue,
		},
		{
			name: "red fills up when outnumbered",
			applicants: []Applicant{
				{UserID: 1, Team: TeamBlue, Username: "a"},
				{UserID: 2, Team: TeamBlue, Username: "b"},
				{UserID: 3, Team: TeamRed, Username: "c"},
			},
			wantTeam: TeamRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFakes()
			svc := f.service()

			f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
				return scheduledEvent(id), nil
			}
			f.apps.ListApplicantsFunc = func(ctx context.Context, scheduleID int64) ([]Applicant, error) {
				return tt.applicants, nil
			}

			app, err := svc.Apply(context.Background(), 42, 3, "")

			require.NoError(t, err)
			assert.Equal(t, tt.wantTeam, app.Team)
		})
	}
}

func TestServiceWithdraw(t *testing.T) {
	t.Run("removes the application while open", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return scheduledEvent(id), nil
		}

		var gotUser, gotSchedule int64
		f.apps.DeleteForUserAndScheduleFunc = func(ctx context.Context, userID, scheduleID int64) error {
			gotUser = userID
			gotSchedule = scheduleID
			return nil
		}

		require.NoError(t, svc.Withdraw(context.Background(), 42, 3))
		assert.Equal(t, int64(42), gotUser)
		assert.Equal(t, int64(3), gotSchedule)
	})

	t.Run("refuses once the schedule left the open state", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			s := scheduledEvent(id)
			s.Status = ScheduleStatusFinished
			return s, nil
		}

		deletes := 0
		f.apps.DeleteForUserAndScheduleFunc = func(ctx context.Context, userID, scheduleID int64) error {
			deletes++
			return nil
		}

		err := svc.Withdraw(context.Background(), 42, 3)

		assert.ErrorIs(t, err, ErrScheduleClosed)
		assert.Zero(t, deletes)
	})
}

func TestServiceStartSchedule(t *testing.T) {
	f := newServiceFakes()
	svc := f.service()

	f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
		return scheduledEvent(id), nil
	}
	f.apps.ListApplicantsFunc = func(ctx context.Context, scheduleID int64) ([]Applicant, error) {
		return []Applicant{
			{UserID: 42, Team: TeamBlue, Username: "nebula_dev"},
			{UserID: 9, Team: TeamRed, Username: "rival"},
		}, nil
	}

	var created *Game
	f.games.CreateFunc = func(ctx context.Context, g *Game) error {
		g.ID = 7
		created = g
		return nil
	}

	var attachedSchedule, attachedGame int64
	f.schedules.AttachGameFunc = func(ctx context.Context, scheduleID, gameID int64) error {
		attachedSchedule = scheduleID
		attachedGame = gameID
		return nil
	}

	var gotFrom, gotTo ScheduleStatus
	f.schedules.UpdateStatusFunc = func(ctx context.Context, id int64, from, to ScheduleStatus) error {
		gotFrom = from
		gotTo = to
		return nil
	}

	started, err := svc.StartSchedule(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 1, f.db.TxCount)

	require.NotNil(t, created)
	assert.Equal(t, GameStateActive, created.State)

	// Every applicant is snapshotted into the document under their
	// user id, with one editor pane each.
	wantStorage := GameStorage{
		Players: map[PlayerSlot]StoredPlayer{
			42: {ID: 42, Team: TeamBlue, Username: "nebula_dev"},
			9:  {ID: 9, Team: TeamRed, Username: "rival"},
		},
		Editors: map[PlayerSlot]StoredEditor{
			42: {Player: 42},
			9:  {Player: 9},
		},
	}
	if diff := cmp.Diff(wantStorage, created.Storage); diff != "" {
		t.Errorf("storage snapshot mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, int64(3), attachedSchedule)
	assert.Equal(t, int64(7), attachedGame)
	assert.Equal(t, ScheduleStatusScheduled, gotFrom)
	assert.Equal(t, ScheduleStatusLive, gotTo)

	assert.Equal(t, ScheduleStatusLive, started.Status)
	require.NotNil(t, started.GameID)
	assert.Equal(t, int64(7), *started.GameID)
}

func TestServiceStartScheduleRejectsWrongState(t *testing.T) {
	f := newServiceFakes()
	svc := f.service()

	f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
		s := scheduledEvent(id)
		s.Status = ScheduleStatusFinished
		return s, nil
	}

	creates := 0
	f.games.CreateFunc = func(ctx context.Context, g *Game) error {
		creates++
		return nil
	}

	_, err := svc.StartSchedule(context.Background(), 3)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, creates)
}

func TestServiceStartScheduleLosesGuardedUpdate(t *testing.T) {
	f := newServiceFakes()
	svc := f.service()

	f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
		return scheduledEvent(id), nil
	}
	// A concurrent start already flipped the row, the guarded update
	// matches nothing.
	f.schedules.UpdateStatusFunc = func(ctx context.Context, id int64, from, to ScheduleStatus) error {
		return core.ErrNotFound
	}

	_, err := svc.StartSchedule(context.Background(), 3)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func liveEvent(id, gameID int64) *GameSchedule {
	s := scheduledEvent(id)
	s.Status = ScheduleStatusLive
	s.GameID = &gameID
	return s
}

func clashStorage() GameStorage {
	storage := NewGameStorage()
	storage.AddPlayer(42, TeamBlue, "nebula_dev")
	storage.AddPlayer(9, TeamRed, "rival")
	storage.AddPlayer(13, TeamBlue, "third_wheel")
	return storage
}

func TestServiceFinishSchedule(t *testing.T) {
	f := newServiceFakes()
	svc := f.service()

	f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
		return liveEvent(id, 5), nil
	}
	f.games.GetByIDFunc = func(ctx context.Context, id int64) (*Game, error) {
		return &Game{ID: id, State: GameStateActive, Storage: clashStorage()}, nil
	}

	var gotState string
	f.games.UpdateStateFunc = func(ctx context.Context, id int64, state string) error {
		gotState = state
		return nil
	}

	var gotFrom, gotTo ScheduleStatus
	f.schedules.UpdateStatusFunc = func(ctx context.Context, id int64, from, to ScheduleStatus) error {
		gotFrom = from
		gotTo = to
		return nil
	}

	var gotGameID int64
	var gotResults []PlayerResult
	f.stats.RecordGameResultsFunc = func(ctx context.Context, tx core.DBTX, gameID int64, results []PlayerResult) error {
		gotGameID = gameID
		gotResults = results
		return nil
	}

	err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
		Results: []PlayerResultRequest{
			{UserID: 42, Result: ResultWon},
			{UserID: 9, Result: ResultLost},
			{UserID: 13, Result: ResultDrawn},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.db.TxCount)
	assert.Equal(t, GameStateCompleted, gotState)
	assert.Equal(t, ScheduleStatusLive, gotFrom)
	assert.Equal(t, ScheduleStatusFinished, gotTo)

	assert.Equal(t, int64(5), gotGameID)
	// Teams come from the storage snapshot, not the request.
	want := []PlayerResult{
		{UserID: 42, Team: TeamBlue, Result: ResultWon, RatingDiff: 25},
		{UserID: 9, Team: TeamRed, Result: ResultLost, RatingDiff: -25},
		{UserID: 13, Team: TeamBlue, Result: ResultDrawn, RatingDiff: 0},
	}
	assert.Equal(t, want, gotResults)
}

func TestServiceFinishScheduleRejectsOutsiders(t *testing.T) {
	f := newServiceFakes()
	svc := f.service()

	f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
		return liveEvent(id, 5), nil
	}
	f.games.GetByIDFunc = func(ctx context.Context, id int64) (*Game, error) {
		return &Game{ID: id, State: GameStateActive, Storage: clashStorage()}, nil
	}

	updates := 0
	f.games.UpdateStateFunc = func(ctx context.Context, id int64, state string) error {
		updates++
		return nil
	}
	recorded := 0
	f.stats.RecordGameResultsFunc = func(ctx context.Context, tx core.DBTX, gameID int64, results []PlayerResult) error {
		recorded++
		return nil
	}

	err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
		Results: []PlayerResultRequest{
			{UserID: 77, Result: ResultWon},
		},
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Zero(t, updates)
	assert.Zero(t, recorded)
}

func TestServiceFinishScheduleGuards(t *testing.T) {
	t.Run("schedule not live", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return scheduledEvent(id), nil
		}

		err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
			Results: []PlayerResultRequest{{UserID: 42, Result: ResultWon}},
		})

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("live schedule without game", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			s := scheduledEvent(id)
			s.Status = ScheduleStatusLive
			return s, nil
		}

		err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
			Results: []PlayerResultRequest{{UserID: 42, Result: ResultWon}},
		})

		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("recorder failure aborts the transaction", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return liveEvent(id, 5), nil
		}
		f.games.GetByIDFunc = func(ctx context.Context, id int64) (*Game, error) {
			return &Game{ID: id, State: GameStateActive, Storage: clashStorage()}, nil
		}

		statsErr := errors.New("stats write failed")
		f.stats.RecordGameResultsFunc = func(ctx context.Context, tx core.DBTX, gameID int64, results []PlayerResult) error {
			return statsErr
		}

		err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
			Results: []PlayerResultRequest{{UserID: 42, Result: ResultWon}},
		})

		assert.ErrorIs(t, err, statsErr)
	})

	t.Run("nil recorder still settles the game", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()
		svc.stats = nil

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return liveEvent(id, 5), nil
		}
		f.games.GetByIDFunc = func(ctx context.Context, id int64) (*Game, error) {
			return &Game{ID: id, State: GameStateActive, Storage: clashStorage()}, nil
		}

		err := svc.FinishSchedule(context.Background(), 3, FinishScheduleRequest{
			Results: []PlayerResultRequest{{UserID: 42, Result: ResultWon}},
		})

		assert.NoError(t, err)
	})
}

func TestServiceCancelSchedule(t *testing.T) {
	t.Run("cancels a scheduled event", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			return scheduledEvent(id), nil
		}

		var gotFrom, gotTo ScheduleStatus
		f.schedules.UpdateStatusFunc = func(ctx context.Context, id int64, from, to ScheduleStatus) error {
			gotFrom = from
			gotTo = to
			return nil
		}

		require.NoError(t, svc.CancelSchedule(context.Background(), 3))
		assert.Equal(t, ScheduleStatusScheduled, gotFrom)
		assert.Equal(t, ScheduleStatusCanceled, gotTo)
	})

	t.Run("live events cannot be canceled", func(t *testing.T) {
		f := newServiceFakes()
		svc := f.service()

		f.schedules.GetByIDFunc = func(ctx context.Context, id int64) (*GameSchedule, error) {
			s := scheduledEvent(id)
			s.Status = ScheduleStatusLive
			return s, nil
		}

		updates := 0
		f.schedules.UpdateStatusFunc = func(ctx context.Context, id int64, from, to ScheduleStatus) error {
			updates++
			return nil
		}

		err := svc.CancelSchedule(context.Background(), 3)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Zero(t, updates)
	})
}
