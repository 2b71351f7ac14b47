// Package contact models the contact form. Submissions are simulated: a
// Submitter waits for a configurable latency and then reports success or a
// configured failure. Nothing is delivered anywhere.
package contact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("contact: submission in progress")
	// ErrSimulated is the default failure of a Simulated submitter set to fail.
	ErrSimulated = errors.New("contact: simulated delivery failure")
)

// Message is the bound form payload.
type Message struct {
	Name    string `form:"name" json:"name" binding:"required,max=200"`
	Email   string `form:"email" json:"email" binding:"required,email,max=320"`
	Message string `form:"message" json:"message" binding:"required,max=5000"`
}

// Trim strips surrounding whitespace from every field.
func (m Message) Trim() Message {
	return Message{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: strings.TrimSpace(m.Message),
	}
}

// Submitter delivers a message.
type Submitter interface {
	Submit(ctx context.Context, m Message) error
}

// Simulated is a Submitter that only waits.
type Simulated struct {
	Latency time.Duration
	// Err, when set, is returned after the wait.
	Err error
}

func (s Simulated) Submit(ctx context.Context, _ Message) error {
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return s.Err
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, m Message) error

func (f SubmitterFunc) Submit(ctx context.Context, m Message) error { return f(ctx, m) }

// Status is the form's lifecycle state.
type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Form tracks one visitor's contact form.
type Form struct {
	mu     sync.Mutex
	status Status
	draft  Message
	err    error
}

// Status returns the current state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Draft returns the values to prefill the form with. It is cleared after a
// successful send and kept after a failure.
func (f *Form) Draft() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Err returns the last submission error, if the form is in Failed.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit sends m through sub. A second call while one is in flight returns
// ErrBusy without touching the first.
func (f *Form) Submit(ctx context.Context, sub Submitter, m Message) error {
	f.mu.Lock()
	if f.status == Submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.status = Submitting
	f.draft = m
	f.err = nil
	f.mu.Unlock()

	err := sub.Submit(ctx, m)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Failed
		f.err = err
		return err
	}
	f.status = Success
	f.draft = Message{}
	return nil
}

// Reset returns to Idle ("send another"). It is ignored mid-submission.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == Submitting {
		return
	}
	f.status = Idle
	f.err = nil
}
