// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards lesson events into it
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

// Bridge forwards lesson callbacks into a running program. Callbacks
// before Attach are dropped.
type Bridge struct {
	program *tea.Program
}

// Attach binds the bridge to p
func (b *Bridge) Attach(p *tea.Program) {
	b.program = p
}

func (b *Bridge) send(msg tea.Msg) {
	if b.program != nil {
		go b.program.Send(msg)
	}
}

// ScrubStart forwards a scrub start
func (b *Bridge) ScrubStart() { b.send(ScrubMsg{Kind: "start"}) }

// ScrubMove forwards a zone update
func (b *Bridge) ScrubMove(u scrub.Update) { b.send(ScrubMsg{Kind: "move", Update: u}) }

// ScrubEnd forwards a scrub end
func (b *Bridge) ScrubEnd(u scrub.Update) { b.send(ScrubMsg{Kind: "end", Update: u}) }

// AutoAdvance forwards an auto-advance hint
func (b *Bridge) AutoAdvance(u scrub.Update) { b.send(ScrubMsg{Kind: "advance", Update: u}) }

// Complete forwards a completed word
func (b *Bridge) Complete(wordID string) { b.send(CompleteMsg{WordID: wordID}) }

// WordAudio forwards word audio readiness
func (b *Bridge) WordAudio(wordID string, source blend.Source) {
	b.send(WordAudioMsg{WordID: wordID, Source: source})
}

// NewProgram creates the full-screen program with mouse motion reporting
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}
