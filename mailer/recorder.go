// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"sync"
)

// Recorder is a Mailer that keeps what it was asked to send.
type Recorder struct {
	mu   sync.Mutex
	sent []Verification
	err  error
}

func (r *Recorder) SendVerification(_ context.Context, v Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, v)
	return nil
}

// Sent returns a copy of the recorded emails.
func (r *Recorder) Sent() []Verification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Verification(nil), r.sent...)
}

// Last returns the most recent email, if any.
func (r *Recorder) Last() (Verification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Verification{}, false
	}
	return r.sent[len(r.sent)-1], true
}

// SetErr makes later sends fail with err. nil restores delivery.
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
