package gateway

import (
	"fmt"
	"sync"

	"botlibrary/model"
)

// Sent records one outbound message for inspection.
type Sent struct {
	UserID    int64
	ChannelID string
	Text      string
	Keyboard  Keyboard
}

// Fake is an in-memory gateway for tests. Delivery failures can be injected
// per recipient or globally.
type Fake struct {
	mu      sync.Mutex
	nextID  int
	DMs     []Sent
	Posts   []Sent
	Edits   []Sent
	Deleted []model.MessageRef

	// FailDM makes SendDM fail for these user IDs.
	FailDM map[int64]bool
	// FailChannel makes SendChannel fail.
	FailChannel bool
	// FailEdit makes Edit fail.
	FailEdit bool
}

// NewFake builds an empty fake gateway.
func NewFake() *Fake {
	return &Fake{FailDM: map[int64]bool{}}
}

func (f *Fake) SendDM(userID int64, text string, kb Keyboard) (model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDM[userID] {
		return model.MessageRef{}, fmt.Errorf("dm to %d blocked", userID)
	}
	f.nextID++
	f.DMs = append(f.DMs, Sent{UserID: userID, Text: text, Keyboard: kb})
	return model.MessageRef{ChannelID: fmt.Sprintf("dm-%d", userID), MessageID: fmt.Sprintf("m%d", f.nextID)}, nil
}

func (f *Fake) SendChannel(channelID, text string, kb Keyboard) (model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChannel {
		return model.MessageRef{}, fmt.Errorf("channel %s unreachable", channelID)
	}
	f.nextID++
	f.Posts = append(f.Posts, Sent{ChannelID: channelID, Text: text, Keyboard: kb})
	return model.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", f.nextID)}, nil
}

func (f *Fake) Edit(ref model.MessageRef, text string, kb Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailEdit {
		return fmt.Errorf("edit of %s failed", ref.MessageID)
	}
	f.Edits = append(f.Edits, Sent{ChannelID: ref.ChannelID, Text: text, Keyboard: kb})
	return nil
}

func (f *Fake) Delete(ref model.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, ref)
	return nil
}

// DMTexts returns the texts sent to one user, in order.
func (f *Fake) DMTexts(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, s := range f.DMs {
		if s.UserID == userID {
			texts = append(texts, s.Text)
		}
	}
	return texts
}
