// Package gateway abstracts the messaging platform the engines talk
// through. Engines only ever see this interface; the Discord adapter lives
// in the bot package.
package gateway

import "botlibrary/model"

// Button is one interactive control. Token carries an action token routed
// back through the inbound event stream; URL buttons open a link instead.
type Button struct {
	Label string
	Token string
	URL   string
}

// Keyboard is a grid of buttons attached to a message.
type Keyboard [][]Button

// Row builds a single-row keyboard fragment.
func Row(buttons ...Button) []Button {
	return buttons
}

// Gateway delivers outbound messages. Implementations must be safe for
// concurrent use.
type Gateway interface {
	// SendDM sends a direct message to a user account.
	SendDM(userID int64, text string, kb Keyboard) (model.MessageRef, error)
	// SendChannel posts to a channel, e.g. the public directory channel.
	SendChannel(channelID, text string, kb Keyboard) (model.MessageRef, error)
	// Edit replaces the text and keyboard of a previously sent message.
	Edit(ref model.MessageRef, text string, kb Keyboard) error
	// Delete removes a previously sent message.
	Delete(ref model.MessageRef) error
}
