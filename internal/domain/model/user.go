package model

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, displayName string) *User {
	now := time.Now()
	return &User{
		ID:           id,
		Email:        email,
		DisplayName:  displayName,
		RegisteredAt: now,
		LastActiveAt: now,
	}
}
