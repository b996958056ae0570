package services

import (
	"reflect"
	"testing"

	"github.com/kamal-hamza/tmedia/internal/core/ports/mocks"
)

func TestSelectionController_Click(t *testing.T) {
	view := mocks.NewMockView(3)
	c := NewSelectionController(view, nil)

	c.Click(1)
	if !view.Boxes[1] {
		t.Error("expected entry 1 to be checked")
	}
	c.Click(1)
	if view.Boxes[1] {
		t.Error("expected entry 1 to be unchecked after second click")
	}

	prev, ok := c.Previous()
	if !ok || prev != 1 {
		t.Errorf("expected previous 1, got %d (%v)", prev, ok)
	}

	c.Click(7)
	if prev, _ := c.Previous(); prev != 1 {
		t.Errorf("out of range click must be ignored, previous is %d", prev)
	}
}

func TestSelectionController_RangeToggle(t *testing.T) {
	view := mocks.NewMockView(8)
	c := NewSelectionController(view, nil)

	c.Click(2)
	c.SetModifier(true)
	c.Click(5)

	want := []bool{false, false, true, true, true, true, false, false}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_RangeToggleDescending(t *testing.T) {
	view := mocks.NewMockView(8)
	c := NewSelectionController(view, nil)

	c.Click(6)
	c.SetModifier(true)
	c.Click(3)

	want := []bool{false, false, false, true, true, true, true, false}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_RangeTogglesIndividually(t *testing.T) {
	view := mocks.NewMockView(5)
	view.Boxes[2] = true
	c := NewSelectionController(view, nil)

	c.Click(0)
	c.SetModifier(true)
	c.Click(4)

	// entries between are flipped, not forced on
	want := []bool{true, true, false, true, true}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_NoRangeWithoutModifier(t *testing.T) {
	view := mocks.NewMockView(6)
	c := NewSelectionController(view, nil)

	c.Click(1)
	c.Click(4)

	want := []bool{false, true, false, false, true, false}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_NoRangeWithoutPrevious(t *testing.T) {
	view := mocks.NewMockView(4)
	c := NewSelectionController(view, nil)
	c.SetModifier(true)

	c.Click(3)

	want := []bool{false, false, false, true}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_SameIndexWithModifier(t *testing.T) {
	view := mocks.NewMockView(3)
	c := NewSelectionController(view, nil)

	c.Click(1)
	c.SetModifier(true)
	c.Click(1)

	if view.Boxes[1] {
		t.Error("expected entry 1 to toggle back off")
	}
}

func TestSelectionController_Reset(t *testing.T) {
	view := mocks.NewMockView(5)
	c := NewSelectionController(view, nil)

	c.Click(0)
	c.Reset()
	c.SetModifier(true)
	c.Click(4)

	want := []bool{true, false, false, false, true}
	if !reflect.DeepEqual(view.Boxes, want) {
		t.Errorf("expected %v, got %v", want, view.Boxes)
	}
}

func TestSelectionController_ThumbnailClick(t *testing.T) {
	view := mocks.NewMockView(3)
	c := NewSelectionController(view, view)

	c.ThumbnailClick(2)

	if !view.Boxes[2] {
		t.Error("expected entry 2 to be checked")
	}
	if len(view.Changes) != 1 || view.Changes[0] != 2 {
		t.Errorf("expected one change notification for 2, got %v", view.Changes)
	}
}

func TestSelectionController_Bulk(t *testing.T) {
	view := mocks.NewMockView(4)
	view.Boxes[1] = true
	c := NewSelectionController(view, nil)

	c.SelectAll()
	if !c.AllChecked() {
		t.Error("expected all checked after SelectAll")
	}

	c.DeselectAll()
	if len(c.CheckedIndices()) != 0 {
		t.Errorf("expected none checked, got %v", c.CheckedIndices())
	}

	view.Boxes[0] = true
	view.Boxes[3] = true
	original := append([]bool(nil), view.Boxes...)

	c.InvertAll()
	if !reflect.DeepEqual(c.CheckedIndices(), []int{1, 2}) {
		t.Errorf("expected [1 2] after invert, got %v", c.CheckedIndices())
	}
	c.InvertAll()
	if !reflect.DeepEqual(view.Boxes, original) {
		t.Errorf("double invert should restore %v, got %v", original, view.Boxes)
	}
}

func TestSelectionController_ToggleAll(t *testing.T) {
	view := mocks.NewMockView(3)
	c := NewSelectionController(view, nil)

	c.ToggleAll()
	if !c.AllChecked() {
		t.Error("expected everything selected")
	}
	c.ToggleAll()
	if len(c.CheckedIndices()) != 0 {
		t.Error("expected everything cleared")
	}
}

func TestSelectionController_EmptyList(t *testing.T) {
	c := NewSelectionController(mocks.NewMockView(0), nil)

	c.SelectAll()
	c.InvertAll()
	c.Click(0)

	if c.AllChecked() {
		t.Error("an empty list is never all checked")
	}
}
