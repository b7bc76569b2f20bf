package collection

// CrossedMidpoint решает, должно ли текущее положение указателя инициировать
// перестановку строк при перетаскивании. Перестановка срабатывает только когда
// указатель пересекает середину наведенной строки, и только в направлении
// движения: при движении вниз — ниже середины, при движении вверх — выше.
// Это убирает дребезг от быстрых возвратных движений у границы строк.
func CrossedMidpoint(pointerY, rowTop, rowHeight float64, movingDown bool) bool {
	if rowHeight <= 0 {
		return false
	}
	mid := rowTop + rowHeight/2
	if movingDown {
		return pointerY > mid
	}
	return pointerY < mid
}
