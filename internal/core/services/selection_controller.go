package services

import (
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// SelectionController owns the checkbox state machine for one rendered list.
// Every list gets its own controller so range toggles never span lists.
type SelectionController struct {
	view     ports.SelectionView
	listener ports.ChangeListener

	previous    int
	hasPrevious bool
	modifier    bool
}

// NewSelectionController creates a controller over a view. listener may be nil.
func NewSelectionController(view ports.SelectionView, listener ports.ChangeListener) *SelectionController {
	return &SelectionController{
		view:     view,
		listener: listener,
	}
}

// SetModifier records whether the range modifier (shift) is held
func (c *SelectionController) SetModifier(held bool) {
	c.modifier = held
}

// ModifierHeld reports the modifier state
func (c *SelectionController) ModifierHeld() bool {
	return c.modifier
}

// Previous returns the last toggled index, if any
func (c *SelectionController) Previous() (int, bool) {
	return c.previous, c.hasPrevious
}

// Reset forgets the last toggled index, e.g. after the list was re-rendered
func (c *SelectionController) Reset() {
	c.previous = 0
	c.hasPrevious = false
}

// Click toggles entry i as a direct checkbox click would
func (c *SelectionController) Click(i int) {
	if !c.inRange(i) {
		return
	}
	c.view.SetChecked(i, !c.view.Checked(i))
	c.changed(i)
}

// ThumbnailClick toggles entry i through its thumbnail and fires a change notification
func (c *SelectionController) ThumbnailClick(i int) {
	if !c.inRange(i) {
		return
	}
	checked := !c.view.Checked(i)
	c.view.SetChecked(i, checked)
	if c.listener != nil {
		c.listener.Changed(i, checked)
	}
	c.changed(i)
}

// changed runs after entry latest was toggled. With the modifier held, every
// entry strictly between the previous index and latest is toggled, stepping
// from the previous index toward latest.
func (c *SelectionController) changed(latest int) {
	if c.modifier && c.hasPrevious && c.previous != latest && c.inRange(c.previous) {
		direction := 1
		if latest < c.previous {
			direction = -1
		}
		for cur := c.previous + direction; cur != latest; cur += direction {
			c.view.SetChecked(cur, !c.view.Checked(cur))
		}
	}

	c.previous = latest
	c.hasPrevious = true
}

// SelectAll checks every entry
func (c *SelectionController) SelectAll() {
	for i := 0; i < c.view.Len(); i++ {
		c.view.SetChecked(i, true)
	}
}

// DeselectAll unchecks every entry
func (c *SelectionController) DeselectAll() {
	for i := 0; i < c.view.Len(); i++ {
		c.view.SetChecked(i, false)
	}
}

// InvertAll flips every entry
func (c *SelectionController) InvertAll() {
	for i := 0; i < c.view.Len(); i++ {
		c.view.SetChecked(i, !c.view.Checked(i))
	}
}

// ToggleAll selects everything unless everything is already selected
func (c *SelectionController) ToggleAll() {
	if c.AllChecked() {
		c.DeselectAll()
		return
	}
	c.SelectAll()
}

// AllChecked reports whether the list is non-empty and fully checked
func (c *SelectionController) AllChecked() bool {
	n := c.view.Len()
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if !c.view.Checked(i) {
			return false
		}
	}
	return true
}

// CheckedIndices returns the checked entries in display order
func (c *SelectionController) CheckedIndices() []int {
	var out []int
	for i := 0; i < c.view.Len(); i++ {
		if c.view.Checked(i) {
			out = append(out, i)
		}
	}
	return out
}

func (c *SelectionController) inRange(i int) bool {
	return i >= 0 && i < c.view.Len()
}
