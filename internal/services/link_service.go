// Package services содержит бизнес-логику поверх слоев хранилища.
package services

import (
	"context"

	"github.com/zauremazhikova/linkpage/internal/model"
)

// LinkService — операции над списком ссылок пользователя.
// Reorder — единственная операция, меняющая позиции; SaveLink всегда
// добавляет в конец, DeleteForUser уплотняет позиции оставшихся.
type LinkService interface {
	GetLinksByUserID(ctx context.Context, userID string) ([]model.Link, error)
	GetActiveLinksByUserID(ctx context.Context, userID string) ([]model.Link, error)
	GetLink(ctx context.Context, id string, userID string) (model.Link, error)
	SaveLink(ctx context.Context, link model.Link) (model.Link, error)
	UpdateLink(ctx context.Context, link model.Link) (model.Link, error)
	Reorder(ctx context.Context, userID string, linkIDs []string) ([]model.Link, error)
	DeleteForUser(ctx context.Context, id string, userID string) error
	GetStats(ctx context.Context) (int, int, error)
}
