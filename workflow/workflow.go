// Package workflow runs the per-submitter submission conversation: a linear
// state machine collecting bot metadata and persisting a pending submission.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/metrics"
	"botlibrary/model"
	"botlibrary/render"
)

// State is the conversation position of one submitter.
type State int

const (
	StateClosed State = iota
	StateAwaitingHandle
	StateAwaitingDescription
	StateAwaitingFeatures
	StateAwaitingCategory
	StateAwaitingConfirmation
)

type draft struct {
	handle      string
	description string
	features    string
	category    model.Category
}

type session struct {
	state State
	draft draft
}

// Engine drives the submission conversations. Draft state is scoped per
// submitter and torn down on close or cancel; it never leaks between
// concurrent submitters.
type Engine struct {
	store *db.Store
	gw    gateway.Gateway
	log   *slog.Logger

	// notify is the moderation notification sink, invoked asynchronously
	// with each new submission's ID.
	notify func(submissionID int64)

	mu       sync.Mutex
	sessions map[int64]*session
}

// New builds a workflow engine. notify may be nil.
func New(store *db.Store, gw gateway.Gateway, notify func(int64), log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		gw:       gw,
		log:      log,
		notify:   notify,
		sessions: make(map[int64]*session),
	}
}

// StateOf returns the submitter's current conversation state.
func (e *Engine) StateOf(userID int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[userID]; ok {
		return s.state
	}
	return StateClosed
}

// Start opens a fresh session and prompts for the handle. An existing
// session for the same submitter is discarded.
func (e *Engine) Start(userID int64) error {
	e.mu.Lock()
	if _, ok := e.sessions[userID]; !ok {
		metrics.OpenSessions.Inc()
	}
	e.sessions[userID] = &session{state: StateAwaitingHandle}
	e.mu.Unlock()

	_, err := e.gw.SendDM(userID, render.PromptHandle, nil)
	return err
}

// Cancel discards the submitter's draft in any non-terminal state.
func (e *Engine) Cancel(userID int64) bool {
	if !e.close(userID) {
		return false
	}
	if _, err := e.gw.SendDM(userID, render.CancelledNotice, nil); err != nil {
		e.log.Warn("cancel notice failed", "user", userID, "err", err)
	}
	return true
}

// HandleText feeds free text into the conversation. It reports whether the
// text belonged to an open session; unrelated messages are left to other
// handlers.
func (e *Engine) HandleText(userID int64, text string) (bool, error) {
	e.mu.Lock()
	s, ok := e.sessions[userID]
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	state := s.state
	e.mu.Unlock()

	switch state {
	case StateAwaitingHandle:
		return true, e.handleHandle(userID, strings.TrimSpace(text))
	case StateAwaitingDescription:
		e.setState(userID, func(s *session) {
			s.draft.description = text
			s.state = StateAwaitingFeatures
		})
		_, err := e.gw.SendDM(userID, render.PromptFeatures, nil)
		return true, err
	case StateAwaitingFeatures:
		e.setState(userID, func(s *session) {
			s.draft.features = text
			s.state = StateAwaitingCategory
		})
		prompt, kb := render.CategoryPrompt()
		_, err := e.gw.SendDM(userID, prompt, kb)
		return true, err
	default:
		// Category and confirmation are button-driven; stray text is
		// ignored but still belongs to the session.
		return true, nil
	}
}

func (e *Engine) handleHandle(userID int64, handle string) error {
	if !strings.HasPrefix(handle, "@") || len(handle) < 2 {
		if _, err := e.gw.SendDM(userID, render.PromptBadHandle, nil); err != nil {
			return err
		}
		return fmt.Errorf("%w: handle %q", errs.ErrValidation, handle)
	}

	free, err := e.store.HandleAvailable(handle)
	if err != nil {
		return err
	}
	if !free {
		e.close(userID)
		if _, err := e.gw.SendDM(userID, render.DuplicateNotice(handle), nil); err != nil {
			e.log.Warn("duplicate notice failed", "user", userID, "err", err)
		}
		return fmt.Errorf("%w: %s", errs.ErrDuplicate, handle)
	}

	e.setState(userID, func(s *session) {
		s.draft.handle = handle
		s.state = StateAwaitingDescription
	})
	_, err = e.gw.SendDM(userID, render.PromptDescription, nil)
	return err
}

// HandleCategory records the picked category and shows the confirmation
// summary.
func (e *Engine) HandleCategory(userID int64, cat model.Category) error {
	e.mu.Lock()
	s, ok := e.sessions[userID]
	if !ok || s.state != StateAwaitingCategory {
		e.mu.Unlock()
		return errs.ErrNotFound
	}
	s.draft.category = cat
	s.state = StateAwaitingConfirmation
	d := s.draft
	e.mu.Unlock()

	text, kb := render.ConfirmSummary(d.handle, d.description, d.features, d.category)
	_, err := e.gw.SendDM(userID, text, kb)
	return err
}

// Confirm resolves the confirmation step. On an affirmative action the
// pending submission is persisted and the moderation sink notified
// asynchronously; either way the session closes.
func (e *Engine) Confirm(userID int64, yes bool) error {
	e.mu.Lock()
	s, ok := e.sessions[userID]
	if !ok || s.state != StateAwaitingConfirmation {
		e.mu.Unlock()
		return errs.ErrNotFound
	}
	d := s.draft
	e.mu.Unlock()

	if !yes {
		e.close(userID)
		if _, err := e.gw.SendDM(userID, render.CancelledNotice, nil); err != nil {
			e.log.Warn("cancel notice failed", "user", userID, "err", err)
		}
		return nil
	}

	sub, err := e.store.CreateSubmission(d.handle, d.description, d.features, d.category, userID)
	if err != nil {
		e.close(userID)
		if errors.Is(err, errs.ErrDuplicate) {
			// Someone beat this submitter to the handle mid-conversation.
			if _, err := e.gw.SendDM(userID, render.DuplicateNotice(d.handle), nil); err != nil {
				e.log.Warn("duplicate notice failed", "user", userID, "err", err)
			}
		}
		return err
	}

	metrics.SubmissionsCreated.Inc()
	e.close(userID)
	if _, err := e.gw.SendDM(userID, render.SubmittedNotice, nil); err != nil {
		e.log.Warn("submitted notice failed", "user", userID, "err", err)
	}
	if e.notify != nil {
		go e.notify(sub.ID)
	}
	return nil
}

func (e *Engine) setState(userID int64, mutate func(*session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[userID]; ok {
		mutate(s)
	}
}

// close tears down the session. Reports whether one was open.
func (e *Engine) close(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[userID]; !ok {
		return false
	}
	delete(e.sessions, userID)
	metrics.OpenSessions.Dec()
	return true
}
