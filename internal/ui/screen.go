// Package ui draws encounters to the terminal using tcell.
package ui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with the handful of calls the game needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return initScreen(s)
}

// NewSimulationScreen creates an in-memory screen of the given size, for
// tests and headless runs. The returned tcell.SimulationScreen can inject
// keys and read back cells.
func NewSimulationScreen(width, height int) (*Screen, tcell.SimulationScreen, error) {
	sim := tcell.NewSimulationScreen("UTF-8")
	s, err := initScreen(sim)
	if err != nil {
		return nil, nil, err
	}
	sim.SetSize(width, height)
	return s, sim, nil
}

func initScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()
	return &Screen{screen: s}, nil
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() {
	s.screen.Fini()
}

// PollEvent waits for the next terminal event. It returns nil once the
// screen is closed.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Clear clears the screen buffer.
func (s *Screen) Clear() {
	s.screen.Clear()
}

// Show flushes the screen buffer to the terminal.
func (s *Screen) Show() {
	s.screen.Show()
}

// SetContent sets a single cell.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// Text draws str starting at (x, y), clipped at the right edge, and returns
// the column after the last rune drawn.
func (s *Screen) Text(x, y int, str string, style tcell.Style) int {
	w, _ := s.Size()
	for _, r := range str {
		if x >= w {
			break
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}

// Sync forces a complete redraw of the screen.
func (s *Screen) Sync() {
	s.screen.Sync()
}
