package services

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/zauremazhikova/linkpage/internal/db/postgres"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// PostgresLinkService реализует операции со ссылками поверх PostgreSQL.
type PostgresLinkService struct{}

// GetLinksByUserID возвращает все ссылки пользователя по порядку.
func (s *PostgresLinkService) GetLinksByUserID(ctx context.Context, userID string) ([]model.Link, error) {
	return postgres.SelectLinksByUser(ctx, userID)
}

// GetActiveLinksByUserID возвращает активные ссылки для публичной страницы.
func (s *PostgresLinkService) GetActiveLinksByUserID(ctx context.Context, userID string) ([]model.Link, error) {
	return postgres.SelectActiveLinksByUser(ctx, userID)
}

// GetLink возвращает одну ссылку пользователя.
func (s *PostgresLinkService) GetLink(ctx context.Context, id string, userID string) (model.Link, error) {
	return postgres.SelectLinkByID(ctx, id, userID)
}

// SaveLink сохраняет новую ссылку в конец списка.
func (s *PostgresLinkService) SaveLink(ctx context.Context, link model.Link) (model.Link, error) {
	saved, err := postgres.InsertLink(ctx, link)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// гонка параллельных вставок за одну позицию
			return model.Link{}, postgres.ErrPositionConflict
		}
		return model.Link{}, err
	}
	return saved, nil
}

// UpdateLink обновляет поля ссылки (позиция не меняется).
func (s *PostgresLinkService) UpdateLink(ctx context.Context, link model.Link) (model.Link, error) {
	return postgres.UpdateLinkFields(ctx, link)
}

// Reorder атомарно переписывает порядок ссылок пользователя.
func (s *PostgresLinkService) Reorder(ctx context.Context, userID string, linkIDs []string) ([]model.Link, error) {
	return postgres.ReorderLinks(ctx, userID, linkIDs)
}

// DeleteForUser удаляет ссылку пользователя с уплотнением позиций.
func (s *PostgresLinkService) DeleteForUser(ctx context.Context, id string, userID string) error {
	return postgres.DeleteLink(ctx, id, userID)
}

// GetStats возвращает количество ссылок и пользователей.
func (s *PostgresLinkService) GetStats(ctx context.Context) (int, int, error) {
	return postgres.CountStats(ctx)
}
