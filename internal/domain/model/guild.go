package model

// UserHandle binds a Discord user to a judge handle inside one guild.
type UserHandle struct {
	UserID  int64  `json:"user_id" db:"user_id"`
	GuildID int64  `json:"guild_id" db:"guild_id"`
	Handle  string `json:"handle" db:"handle"`
	Active  bool   `json:"active" db:"active"`
}

type GuildUser struct {
	GuildID int64
	UserID  int64
}

// Profile is the cached judge profile of a handle.
type Profile struct {
	Handle           string `json:"handle"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Country          string `json:"country,omitempty"`
	City             string `json:"city,omitempty"`
	Organization     string `json:"organization,omitempty"`
	Contribution     int    `json:"contribution"`
	Rating           *int   `json:"rating,omitempty"`
	MaxRating        *int   `json:"max_rating,omitempty"`
	LastOnlineTime   int64  `json:"last_online_time"`
	RegistrationTime int64  `json:"registration_time"`
	FriendOfCount    int    `json:"friend_of_count"`
	TitlePhoto       string `json:"title_photo,omitempty"`
}

// GuildProfile pairs a bound user with the cached profile of their handle.
// Profile is nil when the handle has not been cached yet.
type GuildProfile struct {
	UserID  int64
	Handle  string
	Profile *Profile
}

type ReminderSettings struct {
	GuildID   int64 `json:"guild_id"`
	ChannelID int64 `json:"channel_id"`
	RoleID    int64 `json:"role_id"`
	// Before lists the minutes ahead of a contest at which reminders fire.
	Before []int `json:"before"`
}

type StarboardMessage struct {
	OriginalMsgID  int64 `json:"original_msg_id" db:"original_msg_id"`
	StarboardMsgID int64 `json:"starboard_msg_id" db:"starboard_msg_id"`
	GuildID        int64 `json:"guild_id" db:"guild_id"`
}
