// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUsernameLen = 36
	MaxRoomNameLen = 36
)

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

// UserID is the user's creation index in the registry. Ids are dense,
// start at zero and are never reused.
type UserID int

type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// CheckUserName validates a user name at the boundary, before it
// reaches the registry. The registry itself accepts any name.
func CheckUserName(name string) error {
	return checkName(name, MaxUsernameLen)
}

func checkName(name string, maxLen int) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > maxLen {
		return ErrNameTooLong
	}
	return nil
}
