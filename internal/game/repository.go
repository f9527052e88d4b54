// AngelaMos | 2026
// repository.go

package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/codeclash-gg/backend/internal/core"
)

type GameRepository interface {
	Create(ctx context.Context, game *Game) error
	GetByID(ctx context.Context, id int64) (*Game, error)
	UpdateStorage(ctx context.Context, id int64, storage GameStorage) error
	UpdateState(ctx context.Context, id int64, state string) error
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *GameSchedule) error
	GetByID(ctx context.Context, id int64) (*GameSchedule, error)
	List(
		ctx context.Context,
		params ListSchedulesParams,
	) ([]GameSchedule, int, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to ScheduleStatus) error
	AttachGame(ctx context.Context, scheduleID, gameID int64) error
}

// Applicant is an application row joined with the applicant's username,
// the shape needed to snapshot participants into a game's storage.
type Applicant struct {
	UserID   int64  `db:"user_id"`
	Team     string `db:"team"`
	Username string `db:"username"`
}

// UserApplication is an application row joined with its schedule, the
// shape served on a user's own application listing.
type UserApplication struct {
	ID            int64          `db:"id"`
	ScheduleID    int64          `db:"schedule_id"`
	Team          string         `db:"team"`
	CreatedAt     time.Time      `db:"created_at"`
	ScheduleTitle string         `db:"schedule_title"`
	Status        ScheduleStatus `db:"status"`
	StartsAt      time.Time      `db:"starts_at"`
}

// SettledApplication is an application whose schedule is no longer
// scheduled, carrying the game relation when one exists. Game is nil
// for schedules that never produced a game (canceled events).
type SettledApplication struct {
	Application GameApplication
	Game        *Game
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *GameApplication) error
	GetForUserAndSchedule(
		ctx context.Context,
		userID, scheduleID int64,
	) (*GameApplication, error)
	ListApplicants(ctx context.Context, scheduleID int64) ([]Applicant, error)
	ListForUser(ctx context.Context, userID int64) ([]UserApplication, error)
	ListSettledForUser(
		ctx context.Context,
		userID int64,
	) ([]SettledApplication, error)
	DetachUser(ctx context.Context, applicationID int64) error
	Delete(ctx context.Context, applicationID int64) error
	DeleteForUserAndSchedule(
		ctx context.Context,
		userID, scheduleID int64,
	) error
	DeleteFutureForUser(ctx context.Context, userID int64) (int64, error)
}

type gameRepository struct {
	db core.DBTX
}

func NewGameRepository(db core.DBTX) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *Game) error {
	query := `
		INSERT INTO games (state, storage)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, game, query, game.State, game.Storage)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	return nil
}

func (r *gameRepository) GetByID(
	ctx context.Context,
	id int64,
) (*Game, error) {
	query := `
		SELECT id, state, storage, created_at, updated_at
		FROM games
		WHERE id = $1`

	var game Game
	err := r.db.GetContext(ctx, &game, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get game: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	return &game, nil
}

func (r *gameRepository) UpdateStorage(
	ctx context.Context,
	id int64,
	storage GameStorage,
) error {
	query := `
		UPDATE games
		SET storage = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, storage)
	if err != nil {
		return fmt.Errorf("update game storage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game storage: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update game storage: %w", core.ErrNotFound)
	}

	return nil
}

func (r *gameRepository) UpdateState(
	ctx context.Context,
	id int64,
	state string,
) error {
	query := `
		UPDATE games
		SET state = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, state)
	if err != nil {
		return fmt.Errorf("update game state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game state: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update game state: %w", core.ErrNotFound)
	}

	return nil
}

type scheduleRepository struct {
	db core.DBTX
}

func NewScheduleRepository(db core.DBTX) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(
	ctx context.Context,
	schedule *GameSchedule,
) error {
	query := `
		INSERT INTO game_schedules (title, status, starts_at, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, schedule, query,
		schedule.Title,
		schedule.Status,
		schedule.StartsAt,
		schedule.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	return nil
}

func (r *scheduleRepository) GetByID(
	ctx context.Context,
	id int64,
) (*GameSchedule, error) {
	query := `
		SELECT id, title, status, starts_at, game_id, created_by,
		       created_at, updated_at
		FROM game_schedules
		WHERE id = $1`

	var schedule GameSchedule
	err := r.db.GetContext(ctx, &schedule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get schedule: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	return &schedule, nil
}

func (r *scheduleRepository) List(
	ctx context.Context,
	params ListSchedulesParams,
) ([]GameSchedule, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM game_schedules WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, status, starts_at, game_id, created_by,
		       created_at, updated_at
		FROM game_schedules
		WHERE %s
		ORDER BY starts_at ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var schedules []GameSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	return schedules, total, nil
}

func (r *scheduleRepository) CountByStatus(
	ctx context.Context,
) (map[string]int64, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM game_schedules
		GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count schedules by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (r *scheduleRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to ScheduleStatus,
) error {
	query := `
		UPDATE game_schedules
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update schedule status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *scheduleRepository) AttachGame(
	ctx context.Context,
	scheduleID, gameID int64,
) error {
	query := `
		UPDATE game_schedules
		SET game_id = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, scheduleID, gameID)
	if err != nil {
		return fmt.Errorf("attach game: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach game: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("attach game: %w", core.ErrNotFound)
	}

	return nil
}

type applicationRepository struct {
	db core.DBTX
}

func NewApplicationRepository(db core.DBTX) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(
	ctx context.Context,
	app *GameApplication,
) error {
	query := `
		INSERT INTO game_applications (user_id, schedule_id, team)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, app, query,
		app.UserID,
		app.ScheduleID,
		app.Team,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create application: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

func (r *applicationRepository) GetForUserAndSchedule(
	ctx context.Context,
	userID, scheduleID int64,
) (*GameApplication, error) {
	query := `
		SELECT id, user_id, schedule_id, team, created_at
		FROM game_applications
		WHERE user_id = $1 AND schedule_id = $2`

	var app GameApplication
	err := r.db.GetContext(ctx, &app, query, userID, scheduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get application: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	return &app, nil
}

func (r *applicationRepository) ListApplicants(
	ctx context.Context,
	scheduleID int64,
) ([]Applicant, error) {
	query := `
		SELECT a.user_id, a.team, u.username
		FROM game_applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.schedule_id = $1 AND a.user_id IS NOT NULL
		ORDER BY a.id ASC`

	var applicants []Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}

	return applicants, nil
}

func (r *applicationRepository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]UserApplication, error) {
	query := `
		SELECT
			a.id, a.schedule_id, a.team, a.created_at,
			s.title AS schedule_title, s.status, s.starts_at
		FROM game_applications a
		JOIN game_schedules s ON s.id = a.schedule_id
		WHERE a.user_id = $1
		ORDER BY s.starts_at DESC`

	var apps []UserApplication
	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}

	return apps, nil
}

type settledApplicationRow struct {
	AppID       int64          `db:"app_id"`
	UserID      *int64         `db:"user_id"`
	ScheduleID  int64          `db:"schedule_id"`
	Team        string         `db:"team"`
	CreatedAt   time.Time      `db:"created_at"`
	GameID      sql.NullInt64  `db:"game_id"`
	GameState   sql.NullString `db:"game_state"`
	GameStorage GameStorage    `db:"game_storage"`
}

func (r *applicationRepository) ListSettledForUser(
	ctx context.Context,
	userID int64,
) ([]SettledApplication, error) {
	query := `
		SELECT
			a.id AS app_id, a.user_id, a.schedule_id, a.team, a.created_at,
			g.id AS game_id, g.state AS game_state, g.storage AS game_storage
		FROM game_applications a
		JOIN game_schedules s ON s.id = a.schedule_id
		LEFT JOIN games g ON g.id = s.game_id
		WHERE a.user_id = $1 AND s.status <> $2
		ORDER BY a.id ASC`

	var rows []settledApplicationRow
	err := r.db.SelectContext(ctx, &rows, query,
		userID,
		ScheduleStatusScheduled,
	)
	if err != nil {
		return nil, fmt.Errorf("list settled applications: %w", err)
	}

	settled := make([]SettledApplication, 0, len(rows))
	for _, row := range rows {
		app := SettledApplication{
			Application: GameApplication{
				ID:         row.AppID,
				UserID:     row.UserID,
				ScheduleID: row.ScheduleID,
				Team:       row.Team,
				CreatedAt:  row.CreatedAt,
			},
		}

		if row.GameID.Valid {
			app.Game = &Game{
				ID:      row.GameID.Int64,
				State:   row.GameState.String,
				Storage: row.GameStorage,
			}
		}

		settled = append(settled, app)
	}

	return settled, nil
}

func (r *applicationRepository) DetachUser(
	ctx context.Context,
	applicationID int64,
) error {
	query := `
		UPDATE game_applications
		SET user_id = NULL
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID)
	if err != nil {
		return fmt.Errorf("detach application user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("detach application user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("detach application user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *applicationRepository) Delete(
	ctx context.Context,
	applicationID int64,
) error {
	query := `DELETE FROM game_applications WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete application: %w", core.ErrNotFound)
	}

	return nil
}

func (r *applicationRepository) DeleteForUserAndSchedule(
	ctx context.Context,
	userID, scheduleID int64,
) error {
	query := `
		DELETE FROM game_applications
		WHERE user_id = $1 AND schedule_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, scheduleID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete application: %w", core.ErrNotFound)
	}

	return nil
}

func (r *applicationRepository) DeleteFutureForUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	query := `
		DELETE FROM game_applications
		WHERE user_id = $1
			AND schedule_id IN (
				SELECT id FROM game_schedules WHERE status = $2
			)`

	result, err := r.db.ExecContext(ctx, query,
		userID,
		ScheduleStatusScheduled,
	)
	if err != nil {
		return 0, fmt.Errorf("delete future applications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete future applications: %w", err)
	}

	return rows, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
