package domain

import "time"

// Application представляет заявку пользователя на участие в проекте
type Application struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	Project   *Project  `json:"project,omitempty"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
