package lua

import (
	"errors"
	"sync"
	"time"

	"github.com/drake/digitpad/grid"
)

// MockHost implements Host for testing, backed by a real grid.
type MockHost struct {
	mu sync.Mutex

	Grid  *grid.Grid
	level int

	// Captured calls
	PrintCalls      []string
	StatusCalls     []string
	SaveCalls       []string
	SendCalls       int
	CopyCalls       int
	ClearCalls      int
	ConnectCalls    []string
	DisconnectCalls int
	QuitCalled      bool
	ReloadCalls     int
	BindsChanged    int
	ScheduledTimers []struct {
		ID       int
		Duration time.Duration
		Repeat   bool
	}
	CancelledTimers []int

	SendErr error

	nextTimerID int
}

func NewMockHost() *MockHost {
	return &MockHost{Grid: grid.New(), level: grid.MaxLevel}
}

func (m *MockHost) Paint(x, y, level int) (int, error) {
	cells, err := m.Grid.Paint(x, y, level)
	return len(cells), err
}

func (m *MockHost) Clear() {
	m.ClearCalls++
	m.Grid.Clear()
}

func (m *MockHost) Cell(x, y int) int { return int(m.Grid.At(x, y)) }

func (m *MockHost) Level() int { return m.level }

func (m *MockHost) SetLevel(level int) error {
	if !grid.ValidLevel(level) {
		return errors.New("bad level")
	}
	m.level = level
	return nil
}

func (m *MockHost) Save(path string) error {
	m.SaveCalls = append(m.SaveCalls, path)
	return nil
}

func (m *MockHost) Send() error {
	m.SendCalls++
	return m.SendErr
}

func (m *MockHost) Copy() error {
	m.CopyCalls++
	return nil
}

func (m *MockHost) Connect(target string) {
	m.ConnectCalls = append(m.ConnectCalls, target)
}

func (m *MockHost) Disconnect() { m.DisconnectCalls++ }

func (m *MockHost) Print(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrintCalls = append(m.PrintCalls, text)
}

func (m *MockHost) SetStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls = append(m.StatusCalls, text)
}

func (m *MockHost) Quit()   { m.QuitCalled = true }
func (m *MockHost) Reload() { m.ReloadCalls++ }

func (m *MockHost) TimerAfter(d time.Duration) int { return m.schedule(d, false) }
func (m *MockHost) TimerEvery(d time.Duration) int { return m.schedule(d, true) }

func (m *MockHost) schedule(d time.Duration, repeat bool) int {
	m.nextTimerID++
	m.ScheduledTimers = append(m.ScheduledTimers, struct {
		ID       int
		Duration time.Duration
		Repeat   bool
	}{m.nextTimerID, d, repeat})
	return m.nextTimerID
}

func (m *MockHost) TimerCancel(id int) {
	m.CancelledTimers = append(m.CancelledTimers, id)
}

func (m *MockHost) TimerCancelAll() {}

func (m *MockHost) OnBindsChange() { m.BindsChanged++ }
