package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/model"
)

type discardDriver struct{}

func (discardDriver) Debug(*message.LogMessage) {}
func (discardDriver) Info(*message.LogMessage)  {}
func (discardDriver) Warn(*message.LogMessage)  {}
func (discardDriver) Error(*message.LogMessage) {}
func (discardDriver) Fatal(*message.LogMessage) {}
func (discardDriver) Panic(*message.LogMessage) {}

// stubPersister — управляемый persist-слой для тестов коллекции.
type stubPersister struct {
	reorderCalls int
	deleteCalls  int
	reorderErr   error
	deleteErr    error
	reorderData  []model.Link
	gotIDs       []string
	onReorder    func()
}

func (s *stubPersister) Reorder(_ context.Context, _ string, linkIDs []string) ([]model.Link, error) {
	s.reorderCalls++
	s.gotIDs = append([]string(nil), linkIDs...)
	if s.onReorder != nil {
		s.onReorder()
	}
	if s.reorderErr != nil {
		return nil, s.reorderErr
	}
	return s.reorderData, nil
}

func (s *stubPersister) DeleteForUser(_ context.Context, _ string, _ string) error {
	s.deleteCalls++
	return s.deleteErr
}

func threeLinks() []model.Link {
	return []model.Link{
		{ID: "A", Title: "a", URL: "https://a.example", Position: 0},
		{ID: "B", Title: "b", URL: "https://b.example", Position: 1},
		{ID: "C", Title: "c", URL: "https://c.example", Position: 2},
	}
}

func newTestCollection(svc Persister) *Collection {
	logger.Log = discardDriver{}
	c := New("user-1", svc)
	c.Init(threeLinks())
	return c
}

func TestInitSortsByPosition(t *testing.T) {
	c := newTestCollection(&stubPersister{})

	// подаем в обратном порядке — Init обязан отсортировать
	c.Init([]model.Link{
		{ID: "C", Position: 2},
		{ID: "A", Position: 0},
		{ID: "B", Position: 1},
	})

	assert.Equal(t, []string{"A", "B", "C"}, model.IDs(c.Items()))
	assert.Equal(t, PhaseStable, c.Phase())
}

func TestMoveItemVisualOnly(t *testing.T) {
	svc := &stubPersister{}
	c := newTestCollection(svc)

	c.BeginGesture()
	require.True(t, c.MoveItem(0, 2))

	assert.Equal(t, []string{"B", "C", "A"}, model.IDs(c.Items()))
	// до конца жеста сервис не трогаем
	assert.Zero(t, svc.reorderCalls)
}

func TestMoveItemIgnoresBadIndexes(t *testing.T) {
	c := newTestCollection(&stubPersister{})

	assert.False(t, c.MoveItem(0, 0))
	assert.False(t, c.MoveItem(-1, 1))
	assert.False(t, c.MoveItem(0, 3))
	assert.Equal(t, []string{"A", "B", "C"}, model.IDs(c.Items()))
}

// Сценарий A: завершенный жест уходит в сервис, ответ замещает локальный порядок.
func TestEndGestureAppliesServerOrder(t *testing.T) {
	svc := &stubPersister{reorderData: []model.Link{
		{ID: "B", Position: 0},
		{ID: "C", Position: 1},
		{ID: "A", Position: 2},
	}}
	c := newTestCollection(svc)

	c.BeginGesture()
	require.True(t, c.MoveItem(0, 2))
	require.NoError(t, c.EndGesture(context.Background()))

	assert.Equal(t, 1, svc.reorderCalls)
	assert.Equal(t, []string{"B", "C", "A"}, svc.gotIDs)
	assert.Equal(t, []string{"B", "C", "A"}, model.IDs(c.Items()))
	assert.Equal(t, PhaseStable, c.Phase())

	items := c.Items()
	for i := range items {
		assert.Equal(t, i, items[i].Position)
	}
}

// Сценарий B: жест закончился там же, где начался, — ни одного вызова сервиса.
func TestEndGestureIdempotentWhenOrderUnchanged(t *testing.T) {
	svc := &stubPersister{}
	c := newTestCollection(svc)

	c.BeginGesture()
	require.True(t, c.MoveItem(0, 1))
	require.True(t, c.MoveItem(1, 0))
	require.NoError(t, c.EndGesture(context.Background()))

	assert.Zero(t, svc.reorderCalls)
	assert.Equal(t, []string{"A", "B", "C"}, model.IDs(c.Items()))
}

// Сценарий D: отказ хранилища — полный откат к порядку на начало жеста.
func TestEndGestureRollsBackOnFailure(t *testing.T) {
	svc := &stubPersister{reorderErr: errors.New("storage down")}
	c := newTestCollection(svc)

	c.BeginGesture()
	require.True(t, c.MoveItem(0, 2))
	err := c.EndGesture(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, model.IDs(c.Items()))
	assert.Equal(t, PhaseStable, c.Phase())

	// и позиции исходные
	items := c.Items()
	for i := range items {
		assert.Equal(t, i, items[i].Position)
	}
}

// Вырожденный случай: успех без данных — позиции нумеруются локально.
func TestEndGestureDegenerateSuccess(t *testing.T) {
	svc := &stubPersister{} // reorderData == nil
	c := newTestCollection(svc)

	c.BeginGesture()
	require.True(t, c.MoveItem(2, 0))
	require.NoError(t, c.EndGesture(context.Background()))

	assert.Equal(t, []string{"C", "A", "B"}, model.IDs(c.Items()))
	items := c.Items()
	for i := range items {
		assert.Equal(t, i, items[i].Position)
	}
}

// Перестановки во время синхронизации игнорируются (повторный вход заблокирован).
func TestMoveItemBlockedWhileSyncing(t *testing.T) {
	svc := &stubPersister{}
	c := newTestCollection(svc)

	var movedDuringSync bool
	svc.onReorder = func() {
		movedDuringSync = c.MoveItem(0, 1)
	}

	c.BeginGesture()
	require.True(t, c.MoveItem(0, 2))
	require.NoError(t, c.EndGesture(context.Background()))

	assert.False(t, movedDuringSync)
}

func TestDeleteItemCompactsLocally(t *testing.T) {
	svc := &stubPersister{}
	c := newTestCollection(svc)

	require.NoError(t, c.DeleteItem(context.Background(), "A"))

	assert.Equal(t, 1, svc.deleteCalls)
	assert.Equal(t, []string{"B", "C"}, model.IDs(c.Items()))
	items := c.Items()
	for i := range items {
		assert.Equal(t, i, items[i].Position)
	}
}

func TestDeleteItemKeepsStateOnFailure(t *testing.T) {
	svc := &stubPersister{deleteErr: errors.New("storage down")}
	c := newTestCollection(svc)

	err := c.DeleteItem(context.Background(), "A")

	require.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, model.IDs(c.Items()))
}

func TestCrossedMidpoint(t *testing.T) {
	// строка: top=100, height=40, середина=120
	assert.False(t, CrossedMidpoint(110, 100, 40, true))
	assert.True(t, CrossedMidpoint(121, 100, 40, true))

	// движение вверх: срабатывает только выше середины
	assert.False(t, CrossedMidpoint(130, 100, 40, false))
	assert.True(t, CrossedMidpoint(119, 100, 40, false))

	// вырожденная строка
	assert.False(t, CrossedMidpoint(120, 100, 0, true))
}
