package services

import (
	"context"
	"errors"

	"github.com/zauremazhikova/linkpage/internal/db/postgres"
	"github.com/zauremazhikova/linkpage/internal/db/storage"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// MemoryLinkService реализует операции со ссылками поверх in-memory/file хранилища.
// Ошибки хранилища транслируются в общую таксономию (сигнальные ошибки postgres),
// чтобы хендлеры не различали бэкенды.
type MemoryLinkService struct{}

func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return postgres.ErrLinkNotFound
	case errors.Is(err, storage.ErrEmpty):
		return postgres.ErrNoLinks
	case errors.Is(err, storage.ErrNotOwned):
		return postgres.ErrNotOwned
	case errors.Is(err, storage.ErrIncomplete):
		return postgres.ErrIncompleteSet
	default:
		return err
	}
}

// GetLinksByUserID возвращает все ссылки пользователя по порядку.
func (s *MemoryLinkService) GetLinksByUserID(_ context.Context, userID string) ([]model.Link, error) {
	return storage.Store.LinksByUser(userID), nil
}

// GetActiveLinksByUserID возвращает активные ссылки для публичной страницы.
func (s *MemoryLinkService) GetActiveLinksByUserID(_ context.Context, userID string) ([]model.Link, error) {
	return storage.Store.ActiveLinksByUser(userID), nil
}

// GetLink возвращает одну ссылку пользователя.
func (s *MemoryLinkService) GetLink(_ context.Context, id string, userID string) (model.Link, error) {
	l, err := storage.Store.LinkByID(id, userID)
	return l, mapStorageErr(err)
}

// SaveLink сохраняет новую ссылку в конец списка.
func (s *MemoryLinkService) SaveLink(_ context.Context, link model.Link) (model.Link, error) {
	return storage.Store.Add(link), nil
}

// UpdateLink обновляет поля ссылки (позиция не меняется).
func (s *MemoryLinkService) UpdateLink(_ context.Context, link model.Link) (model.Link, error) {
	l, err := storage.Store.UpdateFields(link)
	return l, mapStorageErr(err)
}

// Reorder переписывает порядок ссылок пользователя.
func (s *MemoryLinkService) Reorder(_ context.Context, userID string, linkIDs []string) ([]model.Link, error) {
	links, err := storage.Store.Reorder(userID, linkIDs)
	return links, mapStorageErr(err)
}

// DeleteForUser удаляет ссылку пользователя с уплотнением позиций.
func (s *MemoryLinkService) DeleteForUser(_ context.Context, id string, userID string) error {
	return mapStorageErr(storage.Store.Delete(id, userID))
}

// GetStats возвращает количество ссылок и пользователей.
func (s *MemoryLinkService) GetStats(_ context.Context) (int, int, error) {
	links, users := storage.Store.Counts()
	return links, users, nil
}

// NewLinkService выбирает реализацию по типу хранилища из конфигурации.
func NewLinkService(storageType string) LinkService {
	if storageType == "DB" {
		return &PostgresLinkService{}
	}
	return &MemoryLinkService{}
}
