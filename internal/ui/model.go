// ABOUTME: Bubbletea model for the terminal scrubber
// ABOUTME: Maps mouse and keyboard input to scrub pointer events and renders the track
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

const (
	frameInterval = 33 * time.Millisecond

	mousePointer    int64 = 1
	keyboardPointer int64 = 2
)

// Lesson is the part of a lesson the model drives
type Lesson interface {
	SetWord(wordID string) (phonics.ParsedWord, error)
	Controller() *scrub.Controller
}

// Model is the scrubber state
type Model struct {
	lesson Lesson
	track  *Track

	wordID    string
	parsed    phonics.ParsedWord
	wordErr   error
	source    blend.Source
	completed bool

	progress float64
	zone     int
	dragging bool

	keyDown bool
	keyX    float64

	width    int
	height   int
	quitting bool
}

type tickMsg time.Time

// ScrubMsg reports a controller event
type ScrubMsg struct {
	Kind   string // start, move, end, advance
	Update scrub.Update
}

// CompleteMsg reports a finished word
type CompleteMsg struct {
	WordID string
}

// WordAudioMsg reports that whole-word audio is ready
type WordAudioMsg struct {
	WordID string
	Source blend.Source
}

// NewModel creates a model for wordID
func NewModel(lesson Lesson, track *Track, wordID string) Model {
	return Model{
		lesson: lesson,
		track:  track,
		wordID: wordID,
		zone:   scrub.NoZone,
	}
}

// Init selects the first word and starts the frame ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return selectWordMsg(m.wordID) },
		tickEvery(),
	)
}

type selectWordMsg string

func tickEvery() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.track.Resize(msg.Width)
		m.lesson.Controller().Resize()
	case tickMsg:
		m.progress = m.lesson.Controller().Tick()
		return m, tickEvery()
	case selectWordMsg:
		m.selectWord(string(msg))
	case ScrubMsg:
		m.applyScrub(msg)
	case CompleteMsg:
		if msg.WordID == m.wordID {
			m.completed = true
		}
	case WordAudioMsg:
		if msg.WordID == m.wordID {
			m.source = msg.Source
		}
	}
	return m, nil
}

func (m *Model) selectWord(id string) {
	parsed, err := m.lesson.SetWord(id)
	m.wordID = id
	m.parsed = parsed
	m.wordErr = err
	m.track.SetUnits(parsed.Units)
	m.lesson.Controller().Resize()

	m.completed = false
	m.source = ""
	m.zone = scrub.NoZone
	m.keyDown = false
	m.dragging = false
}

func (m *Model) applyScrub(msg ScrubMsg) {
	switch msg.Kind {
	case "start":
		m.dragging = true
	case "move":
		m.zone = msg.Update.Zone
	case "end":
		m.dragging = false
		m.zone = scrub.NoZone
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	ctrl := m.lesson.Controller()
	p := scrub.Pointer{ID: mousePointer, X: float64(msg.X)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			ctrl.PointerDown(p)
		}
	case tea.MouseActionMotion:
		ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		ctrl.PointerUp(p)
	}
}

// handleKey handles keyboard input. Space presses and releases a virtual
// pointer that the arrow keys move.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.lesson.Controller()
	left, width := m.track.Bounds()
	step := max(1, float64(width)/20)

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "n":
		m.selectWord(curriculum.Next(m.wordID).ID)
	case "p":
		m.selectWord(curriculum.Previous(m.wordID).ID)
	case " ":
		if m.keyDown {
			m.keyDown = false
			ctrl.PointerUp(scrub.Pointer{ID: keyboardPointer, X: m.keyX})
		} else {
			if m.keyX < float64(left) || m.keyX > float64(left+width) {
				m.keyX = float64(left)
			}
			m.keyDown = true
			ctrl.PointerDown(scrub.Pointer{ID: keyboardPointer, X: m.keyX})
		}
	case "right", "l":
		m.keyX = min(float64(left+width), m.keyX+step)
		ctrl.PointerMove(scrub.Pointer{ID: keyboardPointer, X: m.keyX})
	case "left", "h":
		m.keyX = max(float64(left), m.keyX-step)
		ctrl.PointerMove(scrub.Pointer{ID: keyboardPointer, X: m.keyX})
	case "esc":
		if m.keyDown {
			m.keyDown = false
			ctrl.PointerCancel(scrub.Pointer{ID: keyboardPointer})
		}
	}
	return m, nil
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	vowelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	consonantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	silentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("226"))
	trackStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fillStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	doneStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// View renders the scrubber
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SlideSounds"))
	b.WriteString("  ")
	b.WriteString(m.wordID)
	if w, ok := curriculum.ByID(m.wordID); ok {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  phase %d", w.Phase)))
	}
	b.WriteString("\n\n")

	if m.wordErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Missing audio: %s", strings.Join(m.parsed.Missing, ", "))))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLetters())
	b.WriteString("\n")
	b.WriteString(m.renderTrack())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("drag or space+←/→ to scrub  n/p:word  esc:cancel  q:quit"))
	b.WriteString("\n")
	return b.String()
}

// renderLetters places each grapheme above its anchor
func (m Model) renderLetters() string {
	left, width := m.track.Bounds()
	row := []rune(strings.Repeat(" ", left+width+4))
	styled := make(map[int]string)

	anchors := m.track.Measure().Anchors
	for i, u := range m.parsed.Units {
		if i >= len(anchors) {
			break
		}
		col := m.track.Cell(anchors[i])
		styled[col] = letterStyle(u, i == m.zone).Render(u.Grapheme)
	}

	var b strings.Builder
	for col := 0; col < len(row); {
		if s, ok := styled[col]; ok {
			b.WriteString(s)
			col += lipgloss.Width(s)
			continue
		}
		b.WriteRune(row[col])
		col++
	}
	return strings.TrimRight(b.String(), " ")
}

func letterStyle(u phonics.Unit, active bool) lipgloss.Style {
	if active {
		return activeStyle
	}
	if u.IsSilent {
		return silentStyle
	}
	switch phonics.ColorFor(u.Category) {
	case phonics.ColorVowel:
		return vowelStyle
	case phonics.ColorConsonant:
		return consonantStyle
	default:
		return lipgloss.NewStyle()
	}
}

// renderTrack draws the progress bar with a thumb at the smoothed position
func (m Model) renderTrack() string {
	left, width := m.track.Bounds()
	if width <= 0 {
		return ""
	}
	thumb := m.track.Cell(m.progress) - left

	var filled, rest strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < thumb:
			filled.WriteString("━")
		case i == thumb:
			filled.WriteString("●")
		default:
			rest.WriteString("─")
		}
	}
	return strings.Repeat(" ", left) + fillStyle.Render(filled.String()) + trackStyle.Render(rest.String())
}

func (m Model) renderStatus() string {
	var parts []string
	if m.completed {
		parts = append(parts, doneStyle.Render("✓ "+m.parsed.Word))
	}
	if m.dragging && m.zone >= 0 && m.zone < len(m.parsed.Units) {
		parts = append(parts, "sound: "+m.parsed.Units[m.zone].Label)
	}
	if m.source != "" {
		parts = append(parts, helpStyle.Render("word audio: "+string(m.source)))
	}
	return strings.Join(parts, "   ")
}
