package domain

// Tag представляет навык или категорию проекта
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TagIDs возвращает идентификаторы тегов в исходном порядке
func TagIDs(tags []Tag) []int {
	ids := make([]int, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
