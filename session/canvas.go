package session

import (
	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/ui"
)

// handleUIEvent processes a request from the UI.
func (s *Session) handleUIEvent(msg ui.UIEvent) {
	switch m := msg.(type) {
	case ui.PaintRequest:
		if _, err := s.Paint(m.X, m.Y, s.level); err != nil {
			s.reportError(err)
		}
	case ui.SetLevelRequest:
		if err := s.SetLevel(int(m)); err != nil {
			s.reportError(err)
		}
	case ui.ClearRequest:
		s.Clear()
	case ui.SaveRequest:
		if err := s.Save(m.Path); err != nil {
			s.reportError(err)
		}
	case ui.SendRequest:
		if err := s.Send(); err != nil {
			s.reportError(err)
		}
	case ui.CopyRequest:
		if err := s.Copy(); err != nil {
			s.reportError(err)
		}
	case ui.CommandMsg:
		s.runCommand(string(m))
	case ui.ExecuteBindMsg:
		s.engine.HandleKeyBind(string(m))
	case ui.QuitRequest:
		s.shutdown()
	}
}

// Paint applies a brush stroke and pushes the touched cells to the UI.
func (s *Session) Paint(x, y, level int) (int, error) {
	cells, err := s.grid.Paint(x, y, level)
	if err != nil {
		return 0, err
	}
	s.ui.UpdateCells(cells)
	s.engine.CallHook("painted", x, y, level)
	return len(cells), nil
}

// Clear resets every cell to zero.
func (s *Session) Clear() {
	s.grid.Clear()
	s.ui.LoadCanvas(s.grid.Snapshot())
	s.ui.SetStatus("")
	s.engine.CallHook("cleared")
}

// Cell returns the intensity at (x, y), 0 outside the grid.
func (s *Session) Cell(x, y int) int {
	return int(s.grid.At(x, y))
}

// Level returns the current brush level.
func (s *Session) Level() int {
	return s.level
}

// SetLevel changes the brush level used for pointer strokes.
func (s *Session) SetLevel(level int) error {
	if err := grid.CheckLevel(level); err != nil {
		return err
	}
	s.level = level
	s.ui.SetLevel(level)
	return nil
}
