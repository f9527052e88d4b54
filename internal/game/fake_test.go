// AngelaMos | 2026
// fake_test.go

package game

import (
	"context"

	"github.com/codeclash-gg/backend/internal/core"
)

// FakeDB satisfies core.TxRunner without a database. The callback runs
// with a nil handle, the fakes never touch it.
type FakeDB struct {
	RunInTxFunc func(ctx context.Context, fn func(tx core.DBTX) error) error
	TxCount     int
}

func (f *FakeDB) RunInTx(
	ctx context.Context,
	fn func(tx core.DBTX) error,
) error {
	f.TxCount++
	if f.RunInTxFunc != nil {
		return f.RunInTxFunc(ctx, fn)
	}
	return fn(nil)
}

type FakeGameRepo struct {
	CreateFunc        func(ctx context.Context, game *Game) error
	GetByIDFunc       func(ctx context.Context, id int64) (*Game, error)
	UpdateStorageFunc func(ctx context.Context, id int64, storage GameStorage) error
	UpdateStateFunc   func(ctx context.Context, id int64, state string) error
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{}
}

func (f *FakeGameRepo) Create(ctx context.Context, game *Game) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, game)
	}
	return nil
}

func (f *FakeGameRepo) GetByID(ctx context.Context, id int64) (*Game, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeGameRepo) UpdateStorage(
	ctx context.Context,
	id int64,
	storage GameStorage,
) error {
	if f.UpdateStorageFunc != nil {
		return f.UpdateStorageFunc(ctx, id, storage)
	}
	return nil
}

func (f *FakeGameRepo) UpdateState(
	ctx context.Context,
	id int64,
	state string,
) error {
	if f.UpdateStateFunc != nil {
		return f.UpdateStateFunc(ctx, id, state)
	}
	return nil
}

type FakeScheduleRepo struct {
	CreateFunc        func(ctx context.Context, schedule *GameSchedule) error
	GetByIDFunc       func(ctx context.Context, id int64) (*GameSchedule, error)
	ListFunc          func(ctx context.Context, params ListSchedulesParams) ([]GameSchedule, int, error)
	CountByStatusFunc func(ctx context.Context) (map[string]int64, error)
	UpdateStatusFunc  func(ctx context.Context, id int64, from, to ScheduleStatus) error
	AttachGameFunc    func(ctx context.Context, scheduleID, gameID int64) error
}

func NewFakeScheduleRepo() *FakeScheduleRepo {
	return &FakeScheduleRepo{}
}

func (f *FakeScheduleRepo) Create(
	ctx context.Context,
	schedule *GameSchedule,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, schedule)
	}
	return nil
}

func (f *FakeScheduleRepo) GetByID(
	ctx context.Context,
	id int64,
) (*GameSchedule, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeScheduleRepo) List(
	ctx context.Context,
	params ListSchedulesParams,
) ([]GameSchedule, int, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, params)
	}
	return nil, 0, nil
}

func (f *FakeScheduleRepo) CountByStatus(
	ctx context.Context,
) (map[string]int64, error) {
	if f.CountByStatusFunc != nil {
		return f.CountByStatusFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (f *FakeScheduleRepo) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to ScheduleStatus,
) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (f *FakeScheduleRepo) AttachGame(
	ctx context.Context,
	scheduleID, gameID int64,
) error {
	if f.AttachGameFunc != nil {
		return f.AttachGameFunc(ctx, scheduleID, gameID)
	}
	return nil
}

type FakeApplicationRepo struct {
	CreateFunc                   func(ctx context.Context, app *GameApplication) error
	GetForUserAndScheduleFunc    func(ctx context.Context, userID, scheduleID int64) (*GameApplication, error)
	ListApplicantsFunc           func(ctx context.Context, scheduleID int64) ([]Applicant, error)
	ListForUserFunc              func(ctx context.Context, userID int64) ([]UserApplication, error)
	ListSettledForUserFunc       func(ctx context.Context, userID int64) ([]SettledApplication, error)
	DetachUserFunc               func(ctx context.Context, applicationID int64) error
	DeleteFunc                   func(ctx context.Context, applicationID int64) error
	DeleteForUserAndScheduleFunc func(ctx context.Context, userID, scheduleID int64) error
	DeleteFutureForUserFunc      func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeApplicationRepo() *FakeApplicationRepo {
	return &FakeApplicationRepo{}
}

func (f *FakeApplicationRepo) Create(
	ctx context.Context,
	app *GameApplication,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, app)
	}
	return nil
}

func (f *FakeApplicationRepo) GetForUserAndSchedule(
	ctx context.Context,
	userID, scheduleID int64,
) (*GameApplication, error) {
	if f.GetForUserAndScheduleFunc != nil {
		return f.GetForUserAndScheduleFunc(ctx, userID, scheduleID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeApplicationRepo) ListApplicants(
	ctx context.Context,
	scheduleID int64,
) ([]Applicant, error) {
	if f.ListApplicantsFunc != nil {
		return f.ListApplicantsFunc(ctx, scheduleID)
	}
	return nil, nil
}

func (f *FakeApplicationRepo) ListForUser(
	ctx context.Context,
	userID int64,
) ([]UserApplication, error) {
	if f.ListForUserFunc != nil {
		return f.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeApplicationRepo) ListSettledForUser(
	ctx context.Context,
	userID int64,
) ([]SettledApplication, error) {
	if f.ListSettledForUserFunc != nil {
		return f.ListSettledForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeApplicationRepo) DetachUser(
	ctx context.Context,
	applicationID int64,
) error {
	if f.DetachUserFunc != nil {
		return f.DetachUserFunc(ctx, applicationID)
	}
	return nil
}

func (f *FakeApplicationRepo) Delete(
	ctx context.Context,
	applicationID int64,
) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, applicationID)
	}
	return nil
}

func (f *FakeApplicationRepo) DeleteForUserAndSchedule(
	ctx context.Context,
	userID, scheduleID int64,
) error {
	if f.DeleteForUserAndScheduleFunc != nil {
		return f.DeleteForUserAndScheduleFunc(ctx, userID, scheduleID)
	}
	return nil
}

func (f *FakeApplicationRepo) DeleteFutureForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteFutureForUserFunc != nil {
		return f.DeleteFutureForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeStatsRecorder struct {
	RecordGameResultsFunc func(ctx context.Context, tx core.DBTX, gameID int64, results []PlayerResult) error
}

func (f *FakeStatsRecorder) RecordGameResults(
	ctx context.Context,
	tx core.DBTX,
	gameID int64,
	results []PlayerResult,
) error {
	if f.RecordGameResultsFunc != nil {
		return f.RecordGameResultsFunc(ctx, tx, gameID, results)
	}
	return nil
}

var (
	_ core.TxRunner         = (*FakeDB)(nil)
	_ GameRepository        = (*FakeGameRepo)(nil)
	_ ScheduleRepository    = (*FakeScheduleRepo)(nil)
	_ ApplicationRepository = (*FakeApplicationRepo)(nil)
	_ StatsRecorder         = (*FakeStatsRecorder)(nil)
)
