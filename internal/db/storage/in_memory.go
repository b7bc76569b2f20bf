// Package storage предоставляет простое in-memory и файловое хранилище ссылок.
// Используется, когда PostgreSQL не настроен; поддерживает те же инварианты
// порядка (уникальные, непрерывные позиции 0..N-1 внутри пользователя).
package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"

	"github.com/zauremazhikova/linkpage/internal/config"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// Ошибки in-memory хранилища. Сервисный слой транслирует их в общую таксономию.
var (
	ErrNotFound   = errors.New("storage: link not found")
	ErrEmpty      = errors.New("storage: user has no links")
	ErrNotOwned   = errors.New("storage: link not owned by user")
	ErrIncomplete = errors.New("storage: ids are not a permutation of user links")
)

// Store — глобальное in-memory хранилище, инициализируемое при старте.
var Store *Storage

// Storage — потокобезопасное хранилище списков ссылок по пользователям.
// Слайс каждого пользователя держится отсортированным по Position.
type Storage struct {
	data map[string][]model.Link
	Mu   sync.RWMutex
}

// NewStorage возвращает пустое хранилище.
func NewStorage() *Storage {
	return &Storage{data: make(map[string][]model.Link)}
}

// InitStorage инициализирует глобальное хранилище и загружает данные из файла (если указан путь).
func InitStorage() {
	Store = NewStorage()

	filePath := config.AppConfig.FileStorage
	if filePath == "" {
		return
	}
	if err := Store.LoadFromFile(filePath); err != nil {
		log.Printf("Failed to load store from file: %v", err)
	}
}

// Add добавляет ссылку в конец списка пользователя (position = N).
func (s *Storage) Add(link model.Link) model.Link {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	links := s.data[link.UserID]
	link.Position = len(links)
	s.data[link.UserID] = append(links, link)
	return link
}

// LinksByUser возвращает копию списка ссылок пользователя по возрастанию позиции.
func (s *Storage) LinksByUser(userID string) []model.Link {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	links := s.data[userID]
	cp := make([]model.Link, len(links))
	copy(cp, links)
	return cp
}

// ActiveLinksByUser возвращает только активные ссылки (для публичной страницы).
func (s *Storage) ActiveLinksByUser(userID string) []model.Link {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	var active []model.Link
	for _, l := range s.data[userID] {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active
}

// LinkByID возвращает ссылку пользователя по идентификатору.
func (s *Storage) LinkByID(id, userID string) (model.Link, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	for _, l := range s.data[userID] {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Link{}, ErrNotFound
}

// UpdateFields обновляет поля ссылки, не трогая позицию.
func (s *Storage) UpdateFields(link model.Link) (model.Link, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	links := s.data[link.UserID]
	for i := range links {
		if links[i].ID == link.ID {
			link.Position = links[i].Position
			link.Clicks = links[i].Clicks
			link.CreatedAt = links[i].CreatedAt
			links[i] = link
			return link, nil
		}
	}
	return model.Link{}, ErrNotFound
}

// Delete удаляет ссылку и уплотняет позиции оставшихся.
func (s *Storage) Delete(id, userID string) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	links := s.data[userID]
	idx := -1
	for i := range links {
		if links[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	links = append(links[:idx], links[idx+1:]...)
	for i := range links {
		links[i].Position = i
	}
	s.data[userID] = links
	return nil
}

// Reorder переставляет ссылки пользователя согласно ids.
// ids обязаны быть перестановкой всех его ссылок; иначе состояние не меняется.
func (s *Storage) Reorder(userID string, ids []string) ([]model.Link, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	links := s.data[userID]
	if len(links) == 0 {
		return nil, ErrEmpty
	}

	byID := make(map[string]model.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}

	seen := make(map[string]bool, len(ids))
	reordered := make([]model.Link, 0, len(ids))
	for i, id := range ids {
		l, ok := byID[id]
		if !ok {
			return nil, ErrNotOwned
		}
		if seen[id] {
			return nil, ErrIncomplete
		}
		seen[id] = true
		l.Position = i
		reordered = append(reordered, l)
	}
	if len(reordered) != len(links) {
		return nil, ErrIncomplete
	}

	s.data[userID] = reordered

	cp := make([]model.Link, len(reordered))
	copy(cp, reordered)
	return cp, nil
}

// UserIDs возвращает идентификаторы всех пользователей хранилища.
func (s *Storage) UserIDs() []string {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for userID := range s.data {
		ids = append(ids, userID)
	}
	return ids
}

// Counts возвращает количество ссылок и пользователей.
func (s *Storage) Counts() (int, int) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	links := 0
	for _, ls := range s.data {
		links += len(ls)
	}
	return links, len(s.data)
}

// ShutdownSaveToFile сохраняет данные хранилища в файл перед остановкой.
func (s *Storage) ShutdownSaveToFile(filename string) error {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	if err := os.MkdirAll(getDir(filename), 0755); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s.data)
}

// LoadFromFile загружает данные хранилища из файла.
func (s *Storage) LoadFromFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		// если файл не найден — это не ошибка
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var loaded map[string][]model.Link
	if err := json.NewDecoder(f).Decode(&loaded); err != nil {
		return err
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()
	for userID, links := range loaded {
		model.SortByPosition(links)
		s.data[userID] = links
	}
	return nil
}

// getDir - Получение директории хранилища
func getDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/"
			}
			return path[:i]
		}
	}
	return "."
}
