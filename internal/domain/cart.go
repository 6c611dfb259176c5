package domain

import "time"

// CartLine — позиция корзины: ссылка на вариант и количество.
type CartLine struct {
	VariantID string `json:"variant_id"`
	Qty       int32  `json:"qty"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart — серверный агрегат корзины пользователя. Клиентским суммам
// сервер не доверяет: итог всегда пересчитывается от цен каталога.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Upsert добавляет позицию или увеличивает количество существующей.
func (c *Cart) Upsert(variantID string, qty int32, now time.Time) {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines[i].Qty += qty
			c.UpdatedAt = now
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{VariantID: variantID, Qty: qty, AddedAt: now})
	c.UpdatedAt = now
}

// SetQty выставляет количество позиции; возвращает false, если позиции нет.
func (c *Cart) SetQty(variantID string, qty int32, now time.Time) bool {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines[i].Qty = qty
			c.UpdatedAt = now
			return true
		}
	}
	return false
}

// Remove удаляет позицию; возвращает false, если позиции не было.
func (c *Cart) Remove(variantID string, now time.Time) bool {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = now
			return true
		}
	}
	return false
}

// LineCount возвращает суммарное количество единиц в корзине.
func (c *Cart) LineCount() int32 {
	var total int32
	for _, line := range c.Lines {
		total += line.Qty
	}
	return total
}
