package main

import (
	"bufio"
	"errors"
	"io"

	"onboarding-chat/internal/conversation"
)

type chipResolver interface {
	Resolve(line string) (conversation.Chip, bool)
}

type chatInput interface {
	Click(chip conversation.Chip) error
	Submit(text string) error
}

// readInput feeds stdin lines to the conversation until EOF or until the
// conversation is closed. "#N" clicks the N-th chip on screen.
func readInput(r io.Reader, chips chipResolver, chat chatInput) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		var err error
		if chip, ok := chips.Resolve(line); ok {
			err = chat.Click(chip)
		} else {
			err = chat.Submit(line)
		}
		if errors.Is(err, conversation.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}
