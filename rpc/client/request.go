/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package client implements the RPC request dispatcher: priority queues,
// per-session waiting queues, connection-pool dispatch, session refresh on
// auth failure, and cancellation.
package client

import (
	"time"

	libatm "github.com/sabouaram/vaultrpc/atomic"
	"github.com/sabouaram/vaultrpc/rpc/pool"
)

// Status is the outcome reported to a request's callback.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusAuthError
	StatusAborted
	StatusError
)

// Result is what a request's callback receives.
type Result struct {
	Status  Status
	Message []byte
	Err     error
}

// Session is the polymorphic session handle shared by requests. A single
// refresh operation serves every request waiting on one session-id.
type Session interface {
	ID() string
	IsNull() bool
	IsValid() bool
	SetValid(bool)
	IsRefreshing() bool
	Refresh(client *Dispatcher, lastResponse []byte, cb func(error))
}

// Request is one client-side RPC call.
type Request struct {
	ID          string
	Service     string
	Method      string
	Version     string
	Topic       string
	MessageType string
	Payload     []byte
	Priority    pool.Priority
	Timeout     time.Duration
	MethodAuth  []byte
	Session     Session

	cancelled libatm.Value[bool]
	cb        func(Result)
}

// NewRequest allocates a Request ready for concurrent use, with its wire
// id already assigned. Callers that build a Request as a bare struct
// literal must not call Cancel or IsCancelled before the dispatcher has
// had a chance to call Exec, which lazily completes the same
// initialization (including id assignment, if left empty) on the
// enqueueing goroutine.
func NewRequest() *Request {
	r := &Request{cancelled: libatm.NewValue[bool]()}
	regenerateID(r)
	return r
}

// Cancel marks the request cancelled. The flag is monotonic: once set it
// never clears.
func (r *Request) Cancel() {
	r.cancelledValue().Store(true)
}

func (r *Request) IsCancelled() bool {
	return r.cancelledValue().Load()
}

// cancelledValue returns the request's atomic cancellation cell, allocating
// it on first use. Only safe to call before the request is shared across
// goroutines (e.g. from Exec, which runs on the enqueueing goroutine).
func (r *Request) cancelledValue() libatm.Value[bool] {
	if r.cancelled == nil {
		r.cancelled = libatm.NewValue[bool]()
	}
	return r.cancelled
}

// invoke calls the user callback exactly once, skipping it if the request
// was cancelled in the interim.
func (r *Request) invoke(res Result) {
	if r.IsCancelled() {
		return
	}
	if r.cb != nil {
		r.cb(res)
	}
}
