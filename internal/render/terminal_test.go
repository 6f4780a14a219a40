package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-chat/internal/conversation"
)

func optionChips(labels ...string) []conversation.Chip {
	chips := make([]conversation.Chip, len(labels))
	for i, l := range labels {
		chips[i] = conversation.Chip{Label: l, Action: conversation.ActionSelect, Value: l}
	}
	return chips
}

func TestTerminal_Messages(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Render([]conversation.Command{
		conversation.AppendMessage{Sender: conversation.SenderBot, Text: "Key features:\n✓ Leads\n✓ Pipelines"},
		conversation.AppendMessage{Sender: conversation.SenderUser, Text: "Business type: Retail"},
		conversation.AppendLink{Link: conversation.Link{Label: "Click here to explore a demo", URL: "https://omx.example/demo"}},
		conversation.AppendWarning{Text: "⚠️ Please select at least one option before continuing."},
		conversation.AppendError{Text: "Sorry, I couldn't reach our service. Tap Retry to try again."},
		conversation.ShowTyping{},
		conversation.HideTyping{},
	})

	out := buf.String()
	assert.Contains(t, out, "bot › Key features:")
	assert.Contains(t, out, "✓ Pipelines")
	assert.Contains(t, out, "you › Business type: Retail")
	assert.Contains(t, out, "Click here to explore a demo <https://omx.example/demo>")
	assert.Contains(t, out, "⚠️ Please select at least one option")
	assert.Contains(t, out, "Tap Retry to try again.")
	assert.Contains(t, out, "bot is typing…")
}

func TestTerminal_ContactCard(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Render([]conversation.Command{conversation.AppendContactCard{
		Prompt: "For further assistance, please reach out to our team:",
		Actions: []conversation.Link{
			{Label: "Email Support", URL: "mailto:a@b.com"},
			{Label: "Call Sales", URL: "tel:123"},
		},
	}})

	out := buf.String()
	assert.Contains(t, out, "For further assistance")
	assert.Contains(t, out, "Email Support <mailto:a@b.com>")
	assert.Contains(t, out, "Call Sales <tel:123>")
}

func TestTerminal_ContactCardNote(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Render([]conversation.Command{conversation.AppendContactCard{
		Prompt:  "For further assistance, please reach out to our team:",
		Note:    "Would you like to be connected?",
		Actions: []conversation.Link{{Label: "Email Support", URL: "mailto:a@b.com"}},
	}})

	out := buf.String()
	prompt := strings.Index(out, "For further assistance")
	note := strings.Index(out, "Would you like to be connected?")
	require.GreaterOrEqual(t, prompt, 0)
	assert.Greater(t, note, prompt)
	assert.Less(t, note, strings.Index(out, "Email Support"))
}

func TestTerminal_ChipsAreNumbered(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	chips := append(optionChips("Increase sales", "Improve support"),
		conversation.Chip{Label: "Done selecting", Action: conversation.ActionConfirm})
	term.Render([]conversation.Command{conversation.ShowChips{Chips: chips}})
	assert.Contains(t, buf.String(), "[1] Increase sales  [2] Improve support  [3] Done selecting")

	buf.Reset()
	term.Render([]conversation.Command{conversation.MarkChip{Value: "Improve support"}})
	assert.Contains(t, buf.String(), "[2] Improve support ✓")

	chip, ok := term.Resolve("#2")
	require.True(t, ok)
	assert.True(t, chip.Selected)
	assert.Equal(t, "Improve support", chip.Value)

	chip, ok = term.Resolve(" #3 ")
	require.True(t, ok)
	assert.Equal(t, conversation.ActionConfirm, chip.Action)
}

func TestTerminal_Resolve(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{})
	term.Render([]conversation.Command{conversation.ShowChips{Chips: optionChips("Retail", "Healthcare")}})

	tests := []struct {
		line string
		ok   bool
		want string
	}{
		{"#1", true, "Retail"},
		{"# 2", true, "Healthcare"},
		{"#0", false, ""},
		{"#3", false, ""},
		{"#x", false, ""},
		{"Retail", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			chip, ok := term.Resolve(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, chip.Value)
		})
	}

	term.Render([]conversation.Command{conversation.ClearChips{}})
	_, ok := term.Resolve("#1")
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "plain text", Sanitize("plain text"))
	assert.Equal(t, "line one\nline two", Sanitize("line one\nline two"))
	assert.Equal(t, "[31mred", Sanitize("\x1b[31mred"))
	assert.Equal(t, "bell", Sanitize("be\x07ll"))
	assert.Equal(t, "<b>not markup</b>", Sanitize("<b>not markup</b>"))
}

func TestTerminal_StripsEscapesFromBackendText(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.Render([]conversation.Command{
		conversation.AppendMessage{Sender: conversation.SenderBot, Text: "hi\x1b[2Jthere"},
	})
	assert.False(t, strings.Contains(buf.String(), "\x1b[2J"))
	assert.Contains(t, buf.String(), "hi[2Jthere")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Render([]conversation.Command{
		conversation.AppendMessage{Sender: conversation.SenderBot, Text: "What type of business do you run?"},
		conversation.ShowChips{Chips: optionChips("Retail", "Healthcare")},
		conversation.MarkChip{Value: "Healthcare"},
	})
	rec.Render([]conversation.Command{conversation.AppendMessage{Sender: conversation.SenderUser, Text: "Business type: Retail"}})

	assert.Equal(t, []string{
		"bot: What type of business do you run?",
		"user: Business type: Retail",
	}, rec.Transcript())

	chips := rec.Chips()
	require.Len(t, chips, 2)
	assert.False(t, chips[0].Selected)
	assert.True(t, chips[1].Selected)
	assert.Len(t, rec.Commands(), 4)

	rec.Render([]conversation.Command{conversation.ClearChips{}})
	assert.Empty(t, rec.Chips())

	rec.Reset()
	assert.Empty(t, rec.Commands())
}
