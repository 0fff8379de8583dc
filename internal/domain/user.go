package domain

// User представляет пользователя платформы (профиль из API)
type User struct {
	ID           int           `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email,omitempty"`
	AvatarURL    string        `json:"avatar_url"`
	Description  string        `json:"description"`
	Tags         []Tag         `json:"tags"`
	Projects     []Project     `json:"projects,omitempty"`
	Applications []Application `json:"applications,omitempty"`
}

// ProfileComplete возвращает true если у пользователя заполнены имя и хотя бы один тег.
// Пользователи с незаполненным профилем перенаправляются на форму редактирования.
func (u *User) ProfileComplete() bool {
	return u != nil && u.Username != "" && len(u.Tags) > 0
}

// ProfileUpdate содержит изменяемые поля профиля
type ProfileUpdate struct {
	Username    string `json:"username"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
	Tags        []Tag  `json:"tags"`
}
