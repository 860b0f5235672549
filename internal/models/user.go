package models

import "time"

// User представляет пользователя на сервере trendy
type User struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`    // UUID пользователя
	Email     string    `json:"email"` // email, используемый для входа
}
