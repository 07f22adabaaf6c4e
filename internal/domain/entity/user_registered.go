package entity

import "time"

const EventUserRegistered = "user.registered"

// UserRegistered is published after a user row has been committed.
type UserRegistered struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserRegistered(u *User) UserRegistered {
	return UserRegistered{
		Type:      EventUserRegistered,
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
