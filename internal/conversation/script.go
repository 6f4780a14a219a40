package conversation

import (
	"fmt"
	"strings"
)

// Script is the bot's copy.
type Script struct {
	Greeting string

	BusinessTypePrompt string
	BusinessSizePrompt string
	GoalsPrompt        string

	DoneLabel  string
	RetryLabel string

	DemoLabel     string
	ContactPrompt string
	EmailLabel    string
	CallLabel     string
}

func DefaultScript() Script {
	return Script{
		Greeting:           "Welcome to OMX Digital! I'll help you find the right solution.",
		BusinessTypePrompt: "What type of business do you run?",
		BusinessSizePrompt: "What's your business size?",
		GoalsPrompt:        "What are your main goals? (Select all that apply)",
		DoneLabel:          "Done selecting",
		RetryLabel:         "Retry",
		DemoLabel:          "Click here to explore a demo",
		ContactPrompt:      "For further assistance, please reach out to our team:",
		EmailLabel:         "Email Support",
		CallLabel:          "Call Sales",
	}
}

func (s Script) prompt(key AnswerKey) string {
	switch key {
	case KeyBusinessType:
		return s.BusinessTypePrompt
	case KeyBusinessSize:
		return s.BusinessSizePrompt
	default:
		return s.GoalsPrompt
	}
}

func echo(key AnswerKey, values ...string) string {
	switch key {
	case KeyBusinessType:
		return "Business type: " + strings.Join(values, ", ")
	case KeyBusinessSize:
		return "Business size: " + strings.Join(values, ", ")
	default:
		return "Goals: " + strings.Join(values, ", ")
	}
}

func recommendedLine(name string) string {
	return fmt.Sprintf("Based on your needs, I recommend: %s", name)
}

func featureList(features []string) string {
	var b strings.Builder
	b.WriteString("Key features:")
	for _, f := range features {
		b.WriteString("\n✓ ")
		b.WriteString(f)
	}
	return b.String()
}
