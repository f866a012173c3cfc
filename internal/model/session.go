package model

import "time"

// Role names carried in access tokens.
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// Session is the persisted identity behind an access token.
//
// Fields:
//  ID       – session identifier (the token's sid claim).
//  Name     – employee name, or the reserved actor for pure admin sessions.
//  IsAdmin  – whether the admin passphrase was presented at login.
//  IssuedAt – login time.
type Session struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsAdmin  bool      `json:"is_admin"`
	IssuedAt time.Time `json:"issued_at"`
}

// Role returns the token role for the session.
func (s Session) Role() string {
	if s.IsAdmin {
		return RoleAdmin
	}
	return RoleEmployee
}

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient, user-visible message produced by the sync layer.
type Notice struct {
	ID      string      `json:"id"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}
