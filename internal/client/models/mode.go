package models

import "fmt"

// Mode selects how prev/next is addressed.
type Mode string

const (
	// ModeFlat walks the list snapshot in server order.
	ModeFlat Mode = "flat"
	// ModeGrouped walks series in order, then members within a series.
	ModeGrouped Mode = "grouped"
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFlat, ModeGrouped:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeFlat, ModeGrouped)
	}
}

// Cursor is the transient view position: the shown document and the mode.
// ID is meaningful only while Selected is set; any int64, zero included, is
// a valid document id.
type Cursor struct {
	ID       int64
	Selected bool
	Mode     Mode
}

// Select points the cursor at document id.
func (c *Cursor) Select(id int64) {
	c.ID, c.Selected = id, true
}

// Unselect drops the current document.
func (c *Cursor) Unselect() {
	c.ID, c.Selected = 0, false
}
