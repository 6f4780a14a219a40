package conversation

// Command is a rendering instruction produced by a transition.
type Command interface {
	isCommand()
}

type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

type ChipAction string

const (
	ActionSelect  ChipAction = "select"
	ActionConfirm ChipAction = "confirm"
	ActionAskFAQ  ChipAction = "ask_faq"
	ActionRetry   ChipAction = "retry"
)

// Chip is one clickable suggestion. Value is what a click submits; for
// option and FAQ chips it equals Label.
type Chip struct {
	Label    string
	Action   ChipAction
	Value    string
	Selected bool
}

// Link is a typed hyperlink. Renderers build the markup; backend text is
// never interpreted as markup.
type Link struct {
	Label string
	URL   string
}

type AppendMessage struct {
	Sender Sender
	Text   string
}

type AppendLink struct {
	Link Link
}

// AppendContactCard offers ways to reach a person. Note carries the
// backend's own call to action, shown under Prompt when set.
type AppendContactCard struct {
	Prompt  string
	Note    string
	Actions []Link
}

type AppendWarning struct {
	Text string
}

type AppendError struct {
	Text string
}

type ShowTyping struct{}

type HideTyping struct{}

// ShowChips replaces the chip row.
type ShowChips struct {
	Chips []Chip
}

// MarkChip flags the chip with Value as selected.
type MarkChip struct {
	Value string
}

type ClearChips struct{}

func (AppendMessage) isCommand()     {}
func (AppendLink) isCommand()        {}
func (AppendContactCard) isCommand() {}
func (AppendWarning) isCommand()     {}
func (AppendError) isCommand()       {}
func (ShowTyping) isCommand()        {}
func (HideTyping) isCommand()        {}
func (ShowChips) isCommand()         {}
func (MarkChip) isCommand()          {}
func (ClearChips) isCommand()        {}
