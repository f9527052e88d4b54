// AngelaMos | 2026
// fake_test.go

package user

import (
	"context"

	"github.com/codeclash-gg/backend/internal/auth"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
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

// FakeUserRepo provides a programmable stub for the Repository
// interface.
type FakeUserRepo struct {
	CreateFunc                func(ctx context.Context, user *User) error
	GetByIDFunc               func(ctx context.Context, id int64) (*User, error)
	GetByIDForUpdateFunc      func(ctx context.Context, id int64) (*User, error)
	GetByEmailFunc            func(ctx context.Context, email string) (*User, error)
	GetByUsernameFunc         func(ctx context.Context, username string) (*User, error)
	UpdateFunc                func(ctx context.Context, user *User) error
	UpdatePasswordFunc        func(ctx context.Context, id int64, passwordHash string) error
	UpdateRoleFunc            func(ctx context.Context, id int64, role Role) error
	IncrementTokenVersionFunc func(ctx context.Context, id int64) error
	RecordSignInFunc          func(ctx context.Context, id int64) error
	MarkEmailVerifiedFunc     func(ctx context.Context, id int64) error
	DeleteFunc                func(ctx context.Context, id int64) error
	ListFunc                  func(ctx context.Context, params ListUsersParams) ([]User, int, error)
	CountByRoleFunc           func(ctx context.Context) (map[string]int64, error)
	ExistsByEmailFunc         func(ctx context.Context, email string) (bool, error)
	ExistsByUsernameFunc      func(ctx context.Context, username string) (bool, error)
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{}
}

func (f *FakeUserRepo) Create(ctx context.Context, user *User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	return nil
}

func (f *FakeUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserRepo) GetByIDForUpdate(
	ctx context.Context,
	id int64,
) (*User, error) {
	if f.GetByIDForUpdateFunc != nil {
		return f.GetByIDForUpdateFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserRepo) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserRepo) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	if f.GetByUsernameFunc != nil {
		return f.GetByUsernameFunc(ctx, username)
	}
	return nil, core.ErrNotFound
}

func (f *FakeUserRepo) Update(ctx context.Context, user *User) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, user)
	}
	return nil
}

func (f *FakeUserRepo) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	if f.UpdatePasswordFunc != nil {
		return f.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (f *FakeUserRepo) UpdateRole(
	ctx context.Context,
	id int64,
	role Role,
) error {
	if f.UpdateRoleFunc != nil {
		return f.UpdateRoleFunc(ctx, id, role)
	}
	return nil
}

func (f *FakeUserRepo) IncrementTokenVersion(
	ctx context.Context,
	id int64,
) error {
	if f.IncrementTokenVersionFunc != nil {
		return f.IncrementTokenVersionFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserRepo) RecordSignIn(ctx context.Context, id int64) error {
	if f.RecordSignInFunc != nil {
		return f.RecordSignInFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserRepo) MarkEmailVerified(ctx context.Context, id int64) error {
	if f.MarkEmailVerifiedFunc != nil {
		return f.MarkEmailVerifiedFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserRepo) Delete(ctx context.Context, id int64) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserRepo) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, params)
	}
	return nil, 0, nil
}

func (f *FakeUserRepo) CountByRole(
	ctx context.Context,
) (map[string]int64, error) {
	if f.CountByRoleFunc != nil {
		return f.CountByRoleFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (f *FakeUserRepo) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	if f.ExistsByEmailFunc != nil {
		return f.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (f *FakeUserRepo) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	if f.ExistsByUsernameFunc != nil {
		return f.ExistsByUsernameFunc(ctx, username)
	}
	return false, nil
}

type FakeProfileRepo struct {
	CreateFunc        func(ctx context.Context, profile *Profile) error
	GetFunc           func(ctx context.Context, userID int64) (*Profile, error)
	UpdateFunc        func(ctx context.Context, profile *Profile) error
	DeleteForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{}
}

func (f *FakeProfileRepo) Create(ctx context.Context, profile *Profile) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, profile)
	}
	return nil
}

func (f *FakeProfileRepo) Get(
	ctx context.Context,
	userID int64,
) (*Profile, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, userID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeProfileRepo) Update(ctx context.Context, profile *Profile) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, profile)
	}
	return nil
}

func (f *FakeProfileRepo) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteForUserFunc != nil {
		return f.DeleteForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeStatsRepo struct {
	CreateFunc        func(ctx context.Context, userID int64) error
	GetFunc           func(ctx context.Context, userID int64) (*Stats, error)
	ApplyResultFunc   func(ctx context.Context, userID int64, result string, ratingDiff int) error
	DeleteForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{}
}

func (f *FakeStatsRepo) Create(ctx context.Context, userID int64) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, userID)
	}
	return nil
}

func (f *FakeStatsRepo) Get(
	ctx context.Context,
	userID int64,
) (*Stats, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, userID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeStatsRepo) ApplyResult(
	ctx context.Context,
	userID int64,
	result string,
	ratingDiff int,
) error {
	if f.ApplyResultFunc != nil {
		return f.ApplyResultFunc(ctx, userID, result, ratingDiff)
	}
	return nil
}

func (f *FakeStatsRepo) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteForUserFunc != nil {
		return f.DeleteForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeGameStatsRepo struct {
	CreateFunc           func(ctx context.Context, stat *GameStat) error
	ListForUserFunc      func(ctx context.Context, userID int64, limit int) ([]GameStat, error)
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeGameStatsRepo() *FakeGameStatsRepo {
	return &FakeGameStatsRepo{}
}

func (f *FakeGameStatsRepo) Create(ctx context.Context, stat *GameStat) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, stat)
	}
	return nil
}

func (f *FakeGameStatsRepo) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]GameStat, error) {
	if f.ListForUserFunc != nil {
		return f.ListForUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (f *FakeGameStatsRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeActivityRepo struct {
	CreateFunc           func(ctx context.Context, activity *Activity) error
	ListForUserFunc      func(ctx context.Context, userID int64, limit int) ([]Activity, error)
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeActivityRepo() *FakeActivityRepo {
	return &FakeActivityRepo{}
}

func (f *FakeActivityRepo) Create(
	ctx context.Context,
	activity *Activity,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, activity)
	}
	return nil
}

func (f *FakeActivityRepo) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]Activity, error) {
	if f.ListForUserFunc != nil {
		return f.ListForUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (f *FakeActivityRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeLinkedAccountRepo struct {
	CreateFunc                   func(ctx context.Context, account *LinkedAccount) error
	ListForUserFunc              func(ctx context.Context, userID int64) ([]LinkedAccount, error)
	DeleteForUserAndProviderFunc func(ctx context.Context, userID int64, provider string) error
	DeleteAllForUserFunc         func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeLinkedAccountRepo() *FakeLinkedAccountRepo {
	return &FakeLinkedAccountRepo{}
}

func (f *FakeLinkedAccountRepo) Create(
	ctx context.Context,
	account *LinkedAccount,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, account)
	}
	return nil
}

func (f *FakeLinkedAccountRepo) ListForUser(
	ctx context.Context,
	userID int64,
) ([]LinkedAccount, error) {
	if f.ListForUserFunc != nil {
		return f.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeLinkedAccountRepo) DeleteForUserAndProvider(
	ctx context.Context,
	userID int64,
	provider string,
) error {
	if f.DeleteForUserAndProviderFunc != nil {
		return f.DeleteForUserAndProviderFunc(ctx, userID, provider)
	}
	return nil
}

func (f *FakeLinkedAccountRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakeEmailOptInRepo struct {
	UpsertFunc        func(ctx context.Context, optIn *EmailOptIn) error
	GetFunc           func(ctx context.Context, userID int64) (*EmailOptIn, error)
	DeleteForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeEmailOptInRepo() *FakeEmailOptInRepo {
	return &FakeEmailOptInRepo{}
}

func (f *FakeEmailOptInRepo) Upsert(
	ctx context.Context,
	optIn *EmailOptIn,
) error {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, optIn)
	}
	return nil
}

func (f *FakeEmailOptInRepo) Get(
	ctx context.Context,
	userID int64,
) (*EmailOptIn, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, userID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeEmailOptInRepo) DeleteForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteForUserFunc != nil {
		return f.DeleteForUserFunc(ctx, userID)
	}
	return 0, nil
}

// FakeSessionRepo stubs auth.Repository. Only the purge matters to
// this package, everything else returns zero values.
type FakeSessionRepo struct {
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (f *FakeSessionRepo) Create(
	ctx context.Context,
	token *auth.RefreshToken,
) error {
	return nil
}

func (f *FakeSessionRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*auth.RefreshToken, error) {
	return nil, core.ErrNotFound
}

func (f *FakeSessionRepo) FindByID(
	ctx context.Context,
	id string,
) (*auth.RefreshToken, error) {
	return nil, core.ErrNotFound
}

func (f *FakeSessionRepo) MarkAsUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	return nil
}

func (f *FakeSessionRepo) RevokeByID(ctx context.Context, id string) error {
	return nil
}

func (f *FakeSessionRepo) RevokeByFamilyID(
	ctx context.Context,
	familyID string,
) error {
	return nil
}

func (f *FakeSessionRepo) RevokeAllForUser(
	ctx context.Context,
	userID int64,
) error {
	return nil
}

func (f *FakeSessionRepo) RevokeAll(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *FakeSessionRepo) GetActiveSessionsForUser(
	ctx context.Context,
	userID int64,
) ([]auth.RefreshToken, error) {
	return nil, nil
}

func (f *FakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *FakeSessionRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

type FakePasswordResetRepo struct {
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakePasswordResetRepo() *FakePasswordResetRepo {
	return &FakePasswordResetRepo{}
}

func (f *FakePasswordResetRepo) Create(
	ctx context.Context,
	reset *auth.PasswordReset,
) error {
	return nil
}

func (f *FakePasswordResetRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*auth.PasswordReset, error) {
	return nil, core.ErrNotFound
}

func (f *FakePasswordResetRepo) MarkUsed(ctx context.Context, id int64) error {
	return nil
}

func (f *FakePasswordResetRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (f *FakePasswordResetRepo) DeleteExpired(
	ctx context.Context,
) (int64, error) {
	return 0, nil
}

type FakeEmailVerificationRepo struct {
	DeleteAllForUserFunc func(ctx context.Context, userID int64) (int64, error)
}

func NewFakeEmailVerificationRepo() *FakeEmailVerificationRepo {
	return &FakeEmailVerificationRepo{}
}

func (f *FakeEmailVerificationRepo) Create(
	ctx context.Context,
	verification *auth.EmailVerification,
) error {
	return nil
}

func (f *FakeEmailVerificationRepo) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*auth.EmailVerification, error) {
	return nil, core.ErrNotFound
}

func (f *FakeEmailVerificationRepo) MarkConfirmed(
	ctx context.Context,
	id int64,
) error {
	return nil
}

func (f *FakeEmailVerificationRepo) DeleteAllForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	if f.DeleteAllForUserFunc != nil {
		return f.DeleteAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (f *FakeEmailVerificationRepo) DeleteExpired(
	ctx context.Context,
) (int64, error) {
	return 0, nil
}

type FakeApplicationRepo struct {
	CreateFunc                   func(ctx context.Context, app *game.GameApplication) error
	GetForUserAndScheduleFunc    func(ctx context.Context, userID, scheduleID int64) (*game.GameApplication, error)
	ListApplicantsFunc           func(ctx context.Context, scheduleID int64) ([]game.Applicant, error)
	ListForUserFunc              func(ctx context.Context, userID int64) ([]game.UserApplication, error)
	ListSettledForUserFunc       func(ctx context.Context, userID int64) ([]game.SettledApplication, error)
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
	app *game.GameApplication,
) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, app)
	}
	return nil
}

func (f *FakeApplicationRepo) GetForUserAndSchedule(
	ctx context.Context,
	userID, scheduleID int64,
) (*game.GameApplication, error) {
	if f.GetForUserAndScheduleFunc != nil {
		return f.GetForUserAndScheduleFunc(ctx, userID, scheduleID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeApplicationRepo) ListApplicants(
	ctx context.Context,
	scheduleID int64,
) ([]game.Applicant, error) {
	if f.ListApplicantsFunc != nil {
		return f.ListApplicantsFunc(ctx, scheduleID)
	}
	return nil, nil
}

func (f *FakeApplicationRepo) ListForUser(
	ctx context.Context,
	userID int64,
) ([]game.UserApplication, error) {
	if f.ListForUserFunc != nil {
		return f.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeApplicationRepo) ListSettledForUser(
	ctx context.Context,
	userID int64,
) ([]game.SettledApplication, error) {
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

type FakeGameRepo struct {
	CreateFunc        func(ctx context.Context, g *game.Game) error
	GetByIDFunc       func(ctx context.Context, id int64) (*game.Game, error)
	UpdateStorageFunc func(ctx context.Context, id int64, storage game.GameStorage) error
	UpdateStateFunc   func(ctx context.Context, id int64, state string) error
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{}
}

func (f *FakeGameRepo) Create(ctx context.Context, g *game.Game) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, g)
	}
	return nil
}

func (f *FakeGameRepo) GetByID(
	ctx context.Context,
	id int64,
) (*game.Game, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, core.ErrNotFound
}

func (f *FakeGameRepo) UpdateStorage(
	ctx context.Context,
	id int64,
	storage game.GameStorage,
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

var (
	_ core.TxRunner                    = (*FakeDB)(nil)
	_ Repository                       = (*FakeUserRepo)(nil)
	_ ProfileRepository                = (*FakeProfileRepo)(nil)
	_ StatsRepository                  = (*FakeStatsRepo)(nil)
	_ GameStatsRepository              = (*FakeGameStatsRepo)(nil)
	_ ActivityRepository               = (*FakeActivityRepo)(nil)
	_ LinkedAccountRepository          = (*FakeLinkedAccountRepo)(nil)
	_ EmailOptInRepository             = (*FakeEmailOptInRepo)(nil)
	_ auth.Repository                  = (*FakeSessionRepo)(nil)
	_ auth.PasswordResetRepository     = (*FakePasswordResetRepo)(nil)
	_ auth.EmailVerificationRepository = (*FakeEmailVerificationRepo)(nil)
	_ game.ApplicationRepository       = (*FakeApplicationRepo)(nil)
	_ game.GameRepository              = (*FakeGameRepo)(nil)
)
