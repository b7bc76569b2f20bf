package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// Сигнальные ошибки слоя хранилища.
var (
	// ErrLinkNotFound — ссылка не найдена (или принадлежит другому пользователю).
	ErrLinkNotFound = errors.New("link not found")
	// ErrNoLinks — у пользователя нет ни одной ссылки.
	ErrNoLinks = errors.New("user has no links")
	// ErrNotOwned — в предложенном порядке есть чужой идентификатор.
	ErrNotOwned = errors.New("link is not owned by user")
	// ErrIncompleteSet — предложенный порядок не является перестановкой всех ссылок пользователя.
	ErrIncompleteSet = errors.New("link ids must be a permutation of all user links")
	// ErrPositionConflict — конфликт уникальности позиции (гонка параллельных вставок).
	ErrPositionConflict = errors.New("position conflict")
)

const linkColumns = `id, user_id, title, url, description, icon, emoji, is_active, clicks, position, created_at, updated_at`

func scanLink(row pgx.Row) (model.Link, error) {
	var l model.Link
	err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.URL, &l.Description, &l.Icon, &l.Emoji,
		&l.IsActive, &l.Clicks, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func scanLinks(rows pgx.Rows) ([]model.Link, error) {
	defer rows.Close()

	var links []model.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// SelectLinksByUser возвращает все ссылки пользователя по возрастанию позиции.
func SelectLinksByUser(ctx context.Context, userID string) ([]model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return nil, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	query := "SELECT " + linkColumns + " FROM links WHERE user_id = $1 ORDER BY position"

	rows, err := db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanLinks(rows)
}

// SelectActiveLinksByUser возвращает активные ссылки пользователя для публичной страницы.
func SelectActiveLinksByUser(ctx context.Context, userID string) ([]model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return nil, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	query := "SELECT " + linkColumns + " FROM links WHERE user_id = $1 AND is_active ORDER BY position"

	rows, err := db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanLinks(rows)
}

// SelectLinkByID возвращает одну ссылку пользователя.
func SelectLinkByID(ctx context.Context, id string, userID string) (model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return model.Link{}, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	query := "SELECT " + linkColumns + " FROM links WHERE id = $1 AND user_id = $2"

	l, err := scanLink(db.QueryRow(timeoutCtx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Link{}, ErrLinkNotFound
	}
	return l, err
}

// InsertLink вставляет новую ссылку в конец списка пользователя:
// position = max(position)+1, либо 0, если ссылок еще нет.
func InsertLink(ctx context.Context, link model.Link) (model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return model.Link{}, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	query := `INSERT INTO links (id, user_id, title, url, description, icon, emoji, is_active, position)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
        COALESCE((SELECT MAX(position) + 1 FROM links WHERE user_id = $2), 0))
      RETURNING ` + linkColumns

	return scanLink(db.QueryRow(timeoutCtx, query,
		link.ID, link.UserID, link.Title, link.URL, link.Description, link.Icon, link.Emoji, link.IsActive))
}

// UpdateLinkFields обновляет поля ссылки (но не позицию).
func UpdateLinkFields(ctx context.Context, link model.Link) (model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return model.Link{}, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	query := `UPDATE links SET title = $3, url = $4, description = $5, icon = $6, emoji = $7,
        is_active = $8, updated_at = now()
      WHERE id = $1 AND user_id = $2
      RETURNING ` + linkColumns

	l, err := scanLink(db.QueryRow(timeoutCtx, query,
		link.ID, link.UserID, link.Title, link.URL, link.Description, link.Icon, link.Emoji, link.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Link{}, ErrLinkNotFound
	}
	return l, err
}

// DeleteLink удаляет ссылку и уплотняет позиции оставшихся в той же транзакции,
// чтобы после удаления сохранялась непрерывная последовательность 0..N-1.
func DeleteLink(ctx context.Context, id string, userID string) error {
	instance, err := SQLInstance()
	if err != nil {
		return err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	tx, err := db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	var position int
	err = tx.QueryRow(timeoutCtx,
		"DELETE FROM links WHERE id = $1 AND user_id = $2 RETURNING position",
		id, userID).Scan(&position)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	if err != nil {
		return err
	}

	// сдвигаем вниз всё, что стояло после удаленной ссылки
	_, err = tx.Exec(timeoutCtx,
		"UPDATE links SET position = position - 1 WHERE user_id = $1 AND position > $2",
		userID, position)
	if err != nil {
		return err
	}

	return tx.Commit(timeoutCtx)
}

// ReorderLinks атомарно переписывает позиции ссылок пользователя согласно linkIDs.
//
// Наивное присваивание position = index нарушает уникальный индекс
// (user_id, position): новое значение для одной строки может совпасть со
// старым значением другой, еще не обновленной. Поэтому запись двухфазная:
//
//	фаза 1 — каждая ссылка уводится на отрицательную позицию -(i+1),
//	         заведомо вне диапазона валидных значений;
//	фаза 2 — каждой ссылке присваивается финальная позиция i.
//
// Обе фазы выполняются батчами внутри одной транзакции; никакое промежуточное
// состояние с дублями позиций невозможно. При любой ошибке транзакция
// откатывается целиком.
func ReorderLinks(ctx context.Context, userID string, linkIDs []string) ([]model.Link, error) {
	instance, err := SQLInstance()
	if err != nil {
		return nil, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	tx, err := db.Begin(timeoutCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(timeoutCtx)

	// проверка владения: собираем текущее множество ссылок пользователя
	rows, err := tx.Query(timeoutCtx, "SELECT id FROM links WHERE user_id = $1 FOR UPDATE", userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		owned[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(owned) == 0 {
		return nil, ErrNoLinks
	}

	seen := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		if !owned[id] {
			return nil, fmt.Errorf("%w: %s", ErrNotOwned, id)
		}
		if seen[id] {
			return nil, ErrIncompleteSet
		}
		seen[id] = true
	}
	// порядок обязан перечислять все ссылки пользователя, иначе у
	// неперечисленных возникнут дыры в позициях
	if len(linkIDs) != len(owned) {
		return nil, ErrIncompleteSet
	}

	// фаза 1: увод на отрицательные позиции
	displace := &pgx.Batch{}
	for i, id := range linkIDs {
		displace.Queue("UPDATE links SET position = $1 WHERE id = $2 AND user_id = $3",
			-(i + 1), id, userID)
	}
	br := tx.SendBatch(timeoutCtx, displace)
	for range linkIDs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, err
		}
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	// фаза 2: финальные позиции
	commit := &pgx.Batch{}
	for i, id := range linkIDs {
		commit.Queue("UPDATE links SET position = $1, updated_at = now() WHERE id = $2 AND user_id = $3",
			i, id, userID)
	}
	br = tx.SendBatch(timeoutCtx, commit)
	for range linkIDs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, err
		}
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	// читаем авторитетный результат
	ordered, err := tx.Query(timeoutCtx,
		"SELECT "+linkColumns+" FROM links WHERE user_id = $1 ORDER BY position", userID)
	if err != nil {
		return nil, err
	}
	links, err := scanLinks(ordered)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return nil, err
	}
	return links, nil
}

// CountStats возвращает количество ссылок и пользователей.
func CountStats(ctx context.Context) (int, int, error) {
	instance, err := SQLInstance()
	if err != nil {
		return 0, 0, err
	}
	db := instance.PgSQL

	timeoutCtx, cancel := context.WithTimeout(ctx, instance.Timeout)
	defer cancel()

	var links, users int
	err = db.QueryRow(timeoutCtx,
		"SELECT COUNT(*), COUNT(DISTINCT user_id) FROM links").Scan(&links, &users)
	if err != nil {
		return 0, 0, err
	}
	return links, users, nil
}
