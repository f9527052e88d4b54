// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID              int64      `db:"id"`
	Username        string     `db:"username"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	Role            Role       `db:"role"`
	TokenVersion    int        `db:"token_version"`
	EmailVerifiedAt *time.Time `db:"email_verified_at"`
	LastSignInAt    *time.Time `db:"last_sign_in_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Rank gives roles a total order so privilege checks compare integers
// instead of relying on incidental string ordering. Unknown roles rank
// below everything.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleModerator:
		return 1
	case RoleUser:
		return 0
	default:
		return -1
	}
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

type Profile struct {
	UserID    int64     `db:"user_id"`
	FullName  string    `db:"full_name"`
	Bio       string    `db:"bio"`
	AvatarURL string    `db:"avatar_url"`
	Location  string    `db:"location"`
	Website   string    `db:"website"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const initialRating = 1200

type Stats struct {
	UserID      int64     `db:"user_id"`
	GamesPlayed int       `db:"games_played"`
	Wins        int       `db:"wins"`
	Losses      int       `db:"losses"`
	Draws       int       `db:"draws"`
	Rating      int       `db:"rating"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type GameStat struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	GameID     int64     `db:"game_id"`
	Team       string    `db:"team"`
	Result     string    `db:"result"`
	RatingDiff int       `db:"rating_diff"`
	CreatedAt  time.Time `db:"created_at"`
}

type Activity struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Action    string    `db:"action"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	ActivitySignup          = "signup"
	ActivityProfileUpdated  = "profile_updated"
	ActivityUsernameChanged = "username_changed"
	ActivityEmailVerified   = "email_verified"
	ActivityPasswordChanged = "password_changed"
	ActivityRoleChanged     = "role_changed"
)

type LinkedAccount struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Provider    string    `db:"provider"`
	ProviderUID string    `db:"provider_uid"`
	CreatedAt   time.Time `db:"created_at"`
}

type EmailOptIn struct {
	UserID             int64     `db:"user_id"`
	ProductUpdates     bool      `db:"product_updates"`
	EventAnnouncements bool      `db:"event_announcements"`
	WeeklyDigest       bool      `db:"weekly_digest"`
	UpdatedAt          time.Time `db:"updated_at"`
}
