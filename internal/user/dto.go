// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateMeRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,username"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"  validate:"omitempty,max=100"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=255"`
	Location  *string `json:"location,omitempty"   validate:"omitempty,max=100"`
	Website   *string `json:"website,omitempty"    validate:"omitempty,url,max=255"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

type UpdateEmailOptInRequest struct {
	ProductUpdates     bool `json:"product_updates"`
	EventAnnouncements bool `json:"event_announcements"`
	WeeklyDigest       bool `json:"weekly_digest"`
}

type UserResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProfileResponse struct {
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Location  string `json:"location"`
	Website   string `json:"website"`
}

type StatsResponse struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Draws       int `json:"draws"`
	Rating      int `json:"rating"`
}

// PublicUserResponse is the profile view served on user lookups: no
// email, no verification state.
type PublicUserResponse struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Profile  ProfileResponse `json:"profile"`
	Stats    StatsResponse   `json:"stats"`
	JoinedAt time.Time       `json:"joined_at"`
}

// PublicUserSummary is the directory listing row.
type PublicUserSummary struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

type GameStatResponse struct {
	GameID     int64     `json:"game_id"`
	Team       string    `json:"team"`
	Result     string    `json:"result"`
	RatingDiff int       `json:"rating_diff"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActivityResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LinkedAccountResponse struct {
	Provider    string    `json:"provider"`
	ProviderUID string    `json:"provider_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

type EmailOptInResponse struct {
	ProductUpdates     bool `json:"product_updates"`
	EventAnnouncements bool `json:"event_announcements"`
	WeeklyDigest       bool `json:"weekly_digest"`
}

// DeletedUserResponse carries the identifier of a removed account.
type DeletedUserResponse struct {
	User int64 `json:"user"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Location:  p.Location,
		Website:   p.Website,
	}
}

func ToStatsResponse(s *Stats) StatsResponse {
	return StatsResponse{
		GamesPlayed: s.GamesPlayed,
		Wins:        s.Wins,
		Losses:      s.Losses,
		Draws:       s.Draws,
		Rating:      s.Rating,
	}
}

func ToActivityResponseList(activities []Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, ActivityResponse{
			ID:        a.ID,
			Action:    a.Action,
			Details:   a.Details,
			CreatedAt: a.CreatedAt,
		})
	}
	return responses
}

func ToLinkedAccountResponseList(
	accounts []LinkedAccount,
) []LinkedAccountResponse {
	responses := make([]LinkedAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, LinkedAccountResponse{
			Provider:    a.Provider,
			ProviderUID: a.ProviderUID,
			CreatedAt:   a.CreatedAt,
		})
	}
	return responses
}

func ToPublicUserSummaryList(users []User) []PublicUserSummary {
	summaries := make([]PublicUserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, PublicUserSummary{
			ID:       u.ID,
			Username: u.Username,
			JoinedAt: u.CreatedAt,
		})
	}
	return summaries
}

func ToGameStatResponseList(stats []GameStat) []GameStatResponse {
	responses := make([]GameStatResponse, 0, len(stats))
	for _, s := range stats {
		responses = append(responses, GameStatResponse{
			GameID:     s.GameID,
			Team:       s.Team,
			Result:     s.Result,
			RatingDiff: s.RatingDiff,
			CreatedAt:  s.CreatedAt,
		})
	}
	return responses
}

func ToEmailOptInResponse(o *EmailOptIn) EmailOptInResponse {
	return EmailOptInResponse{
		ProductUpdates:     o.ProductUpdates,
		EventAnnouncements: o.EventAnnouncements,
		WeeklyDigest:       o.WeeklyDigest,
	}
}
