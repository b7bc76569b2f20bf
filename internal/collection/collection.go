// Package collection реализует клиентскую модель упорядоченного списка ссылок
// с оптимистичным drag-and-drop переупорядочиванием.
//
// Жест перетаскивания применяется к списку немедленно (MoveItem), а в базу
// уходит ровно один запрос на завершенный жест (EndGesture). При отказе
// сервера список откатывается к снимку, сделанному в начале жеста.
//
// Модель рассчитана на однопоточное (событийное) использование: повторный
// вход во время синхронизации блокируется фазой, а не мьютексом.
package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/model"
)

// Phase — фаза жизненного цикла жеста.
type Phase int

// Фазы коллекции.
const (
	// PhaseStable — жеста нет, список совпадает с последним подтвержденным состоянием.
	PhaseStable Phase = iota
	// PhaseDragging — жест идет, снимок исходного порядка удерживается для отката.
	PhaseDragging
	// PhaseSyncing — ожидается ответ сервиса; перестановки игнорируются.
	PhaseSyncing
)

// DefaultSyncTimeout — предельное время ожидания синхронизации порядка.
// Истечение трактуется как отказ хранилища: полный откат к снимку.
const DefaultSyncTimeout = 10 * time.Second

// Persister — серверные операции, необходимые коллекции.
// services.LinkService удовлетворяет этому интерфейсу.
type Persister interface {
	Reorder(ctx context.Context, userID string, linkIDs []string) ([]model.Link, error)
	DeleteForUser(ctx context.Context, id string, userID string) error
}

// Collection — упорядоченный список ссылок одного пользователя.
type Collection struct {
	userID      string
	svc         Persister
	items       []model.Link
	snapshot    []model.Link
	phase       Phase
	SyncTimeout time.Duration
}

// New создает коллекцию для пользователя поверх сервиса persist-слоя.
func New(userID string, svc Persister) *Collection {
	return &Collection{
		userID:      userID,
		svc:         svc,
		SyncTimeout: DefaultSyncTimeout,
	}
}

// Init заменяет содержимое коллекции авторитетным списком:
// сортирует по позиции и сбрасывает снимок. Вызывается при первой загрузке
// и после внешнего обновления данных.
func (c *Collection) Init(links []model.Link) {
	c.items = make([]model.Link, len(links))
	copy(c.items, links)
	model.SortByPosition(c.items)

	c.snapshot = make([]model.Link, len(c.items))
	copy(c.snapshot, c.items)
	c.phase = PhaseStable
}

// Items возвращает копию текущего (возможно, еще не подтвержденного) порядка.
func (c *Collection) Items() []model.Link {
	cp := make([]model.Link, len(c.items))
	copy(cp, c.items)
	return cp
}

// Len возвращает количество ссылок.
func (c *Collection) Len() int { return len(c.items) }

// Phase возвращает текущую фазу жеста.
func (c *Collection) Phase() Phase { return c.phase }

// BeginGesture фиксирует снимок порядка в начале перетаскивания.
// Во время синхронизации новый жест начать нельзя.
func (c *Collection) BeginGesture() {
	if c.phase == PhaseSyncing {
		return
	}
	c.snapshot = make([]model.Link, len(c.items))
	copy(c.snapshot, c.items)
	c.phase = PhaseDragging
}

// MoveItem переносит элемент с позиции from на позицию to — чисто визуальная
// перестановка без похода в хранилище. Вызывается на каждое пересечение
// указателем середины соседней строки. Возвращает false, если вызов
// проигнорирован: индексы вне диапазона, from == to или идет синхронизация.
func (c *Collection) MoveItem(from, to int) bool {
	if c.phase == PhaseSyncing {
		return false
	}
	if from < 0 || from >= len(c.items) || to < 0 || to >= len(c.items) || from == to {
		return false
	}

	moved := c.items[from]
	c.items = append(c.items[:from], c.items[from+1:]...)

	rest := c.items[to:]
	c.items = append(c.items[:to:to], moved)
	c.items = append(c.items, rest...)
	return true
}

// EndGesture завершает жест. Если порядок не изменился относительно снимка —
// ничего не делает (сервис не вызывается). Иначе отправляет новый порядок в
// сервис; успешный ответ замещает локальное состояние авторитетным, отказ
// приводит к полному откату на снимок. В любом исходе фаза возвращается к Stable.
func (c *Collection) EndGesture(ctx context.Context) error {
	if c.phase == PhaseSyncing {
		return nil
	}

	currentIDs := model.IDs(c.items)
	originalIDs := model.IDs(c.snapshot)
	if equalIDs(currentIDs, originalIDs) {
		// жест закончился там же, где начался
		c.phase = PhaseStable
		return nil
	}

	c.phase = PhaseSyncing
	defer func() { c.phase = PhaseStable }()

	syncCtx, cancel := context.WithTimeout(ctx, c.SyncTimeout)
	defer cancel()

	ordered, err := c.svc.Reorder(syncCtx, c.userID, currentIDs)
	if err != nil {
		// полный откат оптимистичной перестановки
		c.items = make([]model.Link, len(c.snapshot))
		copy(c.items, c.snapshot)
		logger.Log.Warn(&message.LogMessage{
			Message: fmt.Sprintf("Reorder rolled back for user %s: %s", c.userID, err),
		})
		return err
	}

	if len(ordered) == 0 {
		// вырожденный случай: сервис не вернул данные — нумеруем локально
		for i := range c.items {
			c.items[i].Position = i
		}
	} else {
		c.items = make([]model.Link, len(ordered))
		copy(c.items, ordered)
		model.SortByPosition(c.items)
	}

	c.snapshot = make([]model.Link, len(c.items))
	copy(c.snapshot, c.items)
	return nil
}

// DeleteItem удаляет ссылку через сервис. При отказе состояние не меняется.
// При успехе элемент убирается локально, позиции последующих сдвигаются вниз —
// зеркально серверному уплотнению.
func (c *Collection) DeleteItem(ctx context.Context, id string) error {
	if err := c.svc.DeleteForUser(ctx, id, c.userID); err != nil {
		logger.Log.Warn(&message.LogMessage{
			Message: fmt.Sprintf("Delete failed for link %s: %s", id, err),
		})
		return err
	}

	idx := -1
	for i := range c.items {
		if c.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)
	for i := range c.items {
		c.items[i].Position = i
	}
	c.snapshot = make([]model.Link, len(c.items))
	copy(c.snapshot, c.items)
	return nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
