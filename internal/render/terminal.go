// internal/render/terminal.go
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"onboarding-chat/internal/conversation"
)

type styles struct {
	bot      lipgloss.Style
	user     lipgloss.Style
	body     lipgloss.Style
	link     lipgloss.Style
	warning  lipgloss.Style
	err      lipgloss.Style
	typing   lipgloss.Style
	chip     lipgloss.Style
	selected lipgloss.Style
	card     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		bot:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		user:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		body:     r.NewStyle().Foreground(lipgloss.Color("#FFFDF5")),
		link:     r.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),
		warning:  r.NewStyle().Foreground(lipgloss.Color("214")),
		err:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		typing:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888")),
		chip:     r.NewStyle().Foreground(lipgloss.Color("#AFAFAF")),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		card: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}

// Terminal writes the transcript to a terminal and numbers the chips so a
// line like "#2" can click the second one.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
	chips  []conversation.Chip
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

func (t *Terminal) Render(cmds []conversation.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case conversation.AppendMessage:
			t.message(c.Sender, c.Text)
		case conversation.AppendLink:
			fmt.Fprintf(t.out, "%s 👉 %s\n", t.prefix(conversation.SenderBot), t.linkText(c.Link))
		case conversation.AppendContactCard:
			t.contactCard(c)
		case conversation.AppendWarning:
			fmt.Fprintln(t.out, t.styles.warning.Render(Sanitize(c.Text)))
		case conversation.AppendError:
			fmt.Fprintln(t.out, t.styles.err.Render(Sanitize(c.Text)))
		case conversation.ShowTyping:
			fmt.Fprintln(t.out, t.styles.typing.Render("bot is typing…"))
		case conversation.HideTyping:
			// the transcript is append-only; the next bot line replaces the indicator
		case conversation.ShowChips:
			t.chips = append([]conversation.Chip(nil), c.Chips...)
			t.printChips()
		case conversation.MarkChip:
			for i := range t.chips {
				if t.chips[i].Value == c.Value && t.chips[i].Action == conversation.ActionSelect {
					t.chips[i].Selected = true
				}
			}
			t.printChips()
		case conversation.ClearChips:
			t.chips = nil
		}
	}
}

// Resolve maps an input line of the form "#N" to the N-th visible chip.
func (t *Terminal) Resolve(line string) (conversation.Chip, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return conversation.Chip{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
	if err != nil {
		return conversation.Chip{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.chips) {
		return conversation.Chip{}, false
	}
	return t.chips[n-1], true
}

func (t *Terminal) prefix(sender conversation.Sender) string {
	if sender == conversation.SenderUser {
		return t.styles.user.Render("you ›")
	}
	return t.styles.bot.Render("bot ›")
}

func (t *Terminal) message(sender conversation.Sender, text string) {
	lines := strings.Split(Sanitize(text), "\n")
	fmt.Fprintf(t.out, "%s %s\n", t.prefix(sender), t.styles.body.Render(lines[0]))
	for _, l := range lines[1:] {
		fmt.Fprintf(t.out, "      %s\n", t.styles.body.Render(l))
	}
}

func (t *Terminal) linkText(l conversation.Link) string {
	return t.styles.link.Render(Sanitize(l.Label)) + " <" + Sanitize(l.URL) + ">"
}

func (t *Terminal) contactCard(c conversation.AppendContactCard) {
	var b strings.Builder
	b.WriteString(Sanitize(c.Prompt))
	if c.Note != "" {
		b.WriteString("\n")
		b.WriteString(Sanitize(c.Note))
	}
	for _, a := range c.Actions {
		b.WriteString("\n• ")
		b.WriteString(t.linkText(a))
	}
	fmt.Fprintln(t.out, t.styles.card.Render(b.String()))
}

func (t *Terminal) printChips() {
	if len(t.chips) == 0 {
		return
	}
	parts := make([]string, len(t.chips))
	for i, c := range t.chips {
		label := fmt.Sprintf("[%d] %s", i+1, Sanitize(c.Label))
		if c.Selected {
			parts[i] = t.styles.selected.Render(label + " ✓")
		} else {
			parts[i] = t.styles.chip.Render(label)
		}
	}
	fmt.Fprintln(t.out, strings.Join(parts, "  "))
}

// Sanitize drops control characters from backend text so it cannot move the
// cursor or inject escape sequences. Newlines and tabs survive.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
