// AngelaMos | 2026
// entity.go

package game

import (
	"time"
)

type Game struct {
	ID        int64       `db:"id"`
	State     string      `db:"state"`
	Storage   GameStorage `db:"storage"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

const (
	GameStateActive    = "active"
	GameStateCompleted = "completed"
)

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusLive      ScheduleStatus = "live"
	ScheduleStatusFinished  ScheduleStatus = "finished"
	ScheduleStatusCanceled  ScheduleStatus = "canceled"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled,
		ScheduleStatusLive,
		ScheduleStatusFinished,
		ScheduleStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo encodes the schedule lifecycle: scheduled events either
// go live or get canceled, live events can only finish.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	switch s {
	case ScheduleStatusScheduled:
		return next == ScheduleStatusLive || next == ScheduleStatusCanceled
	case ScheduleStatusLive:
		return next == ScheduleStatusFinished
	default:
		return false
	}
}

type GameSchedule struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Status    ScheduleStatus `db:"status"`
	StartsAt  time.Time      `db:"starts_at"`
	GameID    *int64         `db:"game_id"`
	CreatedBy *int64         `db:"created_by"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (s *GameSchedule) IsOpen() bool {
	return s.Status == ScheduleStatusScheduled
}

// GameApplication ties a user to a scheduled event. UserID is nullable:
// the account-deletion flow detaches the user before the row is removed,
// so a row may transiently carry no user reference.
type GameApplication struct {
	ID         int64     `db:"id"`
	UserID     *int64    `db:"user_id"`
	ScheduleID int64     `db:"schedule_id"`
	Team       string    `db:"team"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	TeamBlue = "blue"
	TeamRed  = "red"
)

const (
	ResultWon   = "won"
	ResultLost  = "lost"
	ResultDrawn = "drawn"
)
