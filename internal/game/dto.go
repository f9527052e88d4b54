// AngelaMos | 2026
// dto.go

package game

import (
	"time"
)

type CreateScheduleRequest struct {
	Title    string    `json:"title"     validate:"required,min=3,max=100"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

type ApplyRequest struct {
	Team string `json:"team" validate:"omitempty,oneof=blue red"`
}

type PlayerResultRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Result string `json:"result"  validate:"required,oneof=won lost drawn"`
}

type FinishScheduleRequest struct {
	Results []PlayerResultRequest `json:"results" validate:"required,min=1,dive"`
}

type ScheduleResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"starts_at"`
	GameID    *int64    `json:"game_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ScheduleDetailResponse struct {
	ScheduleResponse
	Game *GameResponse `json:"game,omitempty"`
}

type GameResponse struct {
	ID      int64       `json:"id"`
	State   string      `json:"state"`
	Storage GameStorage `json:"storage"`
}

type ApplicationResponse struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"schedule_id"`
	Team       string    `json:"team"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserApplicationResponse struct {
	ID            int64     `json:"id"`
	ScheduleID    int64     `json:"schedule_id"`
	ScheduleTitle string    `json:"schedule_title"`
	Status        string    `json:"status"`
	StartsAt      time.Time `json:"starts_at"`
	Team          string    `json:"team"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListSchedulesParams struct {
	Page     int
	PageSize int
	Status   string
}

func (p *ListSchedulesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListSchedulesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToScheduleResponse(s *GameSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		Title:     s.Title,
		Status:    string(s.Status),
		StartsAt:  s.StartsAt,
		GameID:    s.GameID,
		CreatedAt: s.CreatedAt,
	}
}

func ToScheduleResponseList(schedules []GameSchedule) []ScheduleResponse {
	responses := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, ToScheduleResponse(&schedules[i]))
	}
	return responses
}

func ToGameResponse(g *Game) *GameResponse {
	if g == nil {
		return nil
	}
	return &GameResponse{
		ID:      g.ID,
		State:   g.State,
		Storage: g.Storage,
	}
}

func ToApplicationResponse(a *GameApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:         a.ID,
		ScheduleID: a.ScheduleID,
		Team:       a.Team,
		CreatedAt:  a.CreatedAt,
	}
}

func ToUserApplicationResponseList(
	apps []UserApplication,
) []UserApplicationResponse {
	responses := make([]UserApplicationResponse, 0, len(apps))
	for _, a := range apps {
		responses = append(responses, UserApplicationResponse{
			ID:            a.ID,
			ScheduleID:    a.ScheduleID,
			ScheduleTitle: a.ScheduleTitle,
			Status:        string(a.Status),
			StartsAt:      a.StartsAt,
			Team:          a.Team,
			CreatedAt:     a.CreatedAt,
		})
	}
	return responses
}
