package render

import (
	"sync"

	"onboarding-chat/internal/conversation"
)

// Recorder keeps every command it receives. It stands in for a UI in tests
// and in embedding programs that draw the transcript themselves.
type Recorder struct {
	mu   sync.Mutex
	cmds []conversation.Command
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Render(cmds []conversation.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmds...)
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []conversation.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]conversation.Command(nil), r.cmds...)
}

// Transcript returns the message texts in order, ignoring other commands.
func (r *Recorder) Transcript() []string {
	var out []string
	for _, c := range r.Commands() {
		if m, ok := c.(conversation.AppendMessage); ok {
			out = append(out, string(m.Sender)+": "+m.Text)
		}
	}
	return out
}

// Chips returns the chip row currently on screen.
func (r *Recorder) Chips() []conversation.Chip {
	var chips []conversation.Chip
	for _, c := range r.Commands() {
		switch v := c.(type) {
		case conversation.ShowChips:
			chips = append([]conversation.Chip(nil), v.Chips...)
		case conversation.MarkChip:
			for i := range chips {
				if chips[i].Value == v.Value {
					chips[i].Selected = true
				}
			}
		case conversation.ClearChips:
			chips = nil
		}
	}
	return chips
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = nil
}

var (
	_ conversation.Renderer = (*Recorder)(nil)
	_ conversation.Renderer = (*Terminal)(nil)
)
