package domain

// Project представляет проект с владельцем, участниками и требуемыми навыками
type Project struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	ImageURL        string        `json:"image_url"`
	OwnerID         int           `json:"owner_id"`
	Owner           User          `json:"owner"`
	Collaborators   []User        `json:"collaborators"`
	RequiredSkills  []Tag         `json:"required_skills"`
	PreferredSkills []Tag         `json:"preferred_skills"`
	Applications    []Application `json:"applications"`
}

// ApplicationCount возвращает количество заявок на проект
func (p *Project) ApplicationCount() int {
	return len(p.Applications)
}

// CollaboratorsExceptOwner возвращает участников проекта без владельца
func (p *Project) CollaboratorsExceptOwner() []User {
	result := make([]User, 0, len(p.Collaborators))
	for _, c := range p.Collaborators {
		if c.ID == p.Owner.ID {
			continue
		}
		result = append(result, c)
	}
	return result
}

// IsOwnedBy проверяет, является ли пользователь владельцем проекта
func (p *Project) IsOwnedBy(userID int) bool {
	if p.Owner.ID != 0 {
		return p.Owner.ID == userID
	}
	return p.OwnerID == userID
}

// NewProject содержит поля для создания проекта
type NewProject struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	RequiredSkills  []Tag  `json:"required_skills"`
	PreferredSkills []Tag  `json:"preferred_skills"`
}
