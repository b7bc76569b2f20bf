// Package model содержит общие структуры данных приложения.
package model

import (
	"sort"
	"time"
)

// Link — одна ссылка на публичной странице пользователя.
// Position определяет место ссылки в списке владельца: внутри одного
// пользователя значения уникальны и образуют непрерывную последовательность
// 0..N-1 (инварианты поддерживаются сервисом переупорядочивания,
// вставкой в конец и уплотнением при удалении).
type Link struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Emoji       string    `json:"emoji,omitempty"`
	IsActive    bool      `json:"is_active"`
	Clicks      int       `json:"clicks"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortByPosition сортирует ссылки по возрастанию Position (in-place).
func SortByPosition(links []Link) {
	sort.Slice(links, func(i, j int) bool {
		return links[i].Position < links[j].Position
	})
}

// IDs возвращает идентификаторы ссылок в порядке слайса.
func IDs(links []Link) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}
