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

package client

import (
	"container/list"
	"context"
	"sync"

	lbuuid "github.com/hashicorp/go-uuid"

	"github.com/sabouaram/vaultrpc/errors"
	"github.com/sabouaram/vaultrpc/rpc/envelope"
	"github.com/sabouaram/vaultrpc/rpc/pool"
	libclt "github.com/sabouaram/vaultrpc/socket/client"
)

// serialize renders the request envelope as a single length-prefixed-field
// buffer (rpc/envelope), matched on the wire by rpc/server's default
// parser. Re-serialized on every send, since the wire format can depend on
// session state that may have been refreshed between attempts.
func serialize(req *Request) [][]byte {
	return [][]byte{envelope.Encode(envelope.Request{
		ID:          req.ID,
		Service:     req.Service,
		Method:      req.Method,
		Version:     req.Version,
		Topic:       req.Topic,
		MessageType: req.MessageType,
		MethodAuth:  req.MethodAuth,
		Payload:     req.Payload,
	})}
}

// regenerateID assigns req a fresh wire identity, used both for a
// request's first enqueue (if its creator left ID empty) and for every
// refresh-triggered retry, per the "regenerate id on retry" invariant.
func regenerateID(req *Request) {
	id, err := lbuuid.GenerateUUID()
	if err != nil {
		return
	}
	req.ID = id
}

// Dispatcher is one client's request queue and event loop, owning a
// priority-ordered set of FIFOs, session-waiting queues, and the
// connection pool requests are sent through.
type Dispatcher struct {
	pool *pool.Pool

	maxQueueDepth    int
	perPriorityDepth map[pool.Priority]int

	mu       sync.Mutex
	queues   map[pool.Priority]*list.List
	waiters  map[pool.Priority]int
	sessionQ map[string]*list.List
	closed   bool

	jobs chan func()
	quit chan struct{}
}

func New(p *pool.Pool, maxQueueDepth int) *Dispatcher {
	d := &Dispatcher{
		pool:          p,
		maxQueueDepth: maxQueueDepth,
		queues:        make(map[pool.Priority]*list.List),
		waiters:       make(map[pool.Priority]int),
		sessionQ:      make(map[string]*list.List),
		jobs:          make(chan func(), 64),
		quit:          make(chan struct{}),
	}
	for _, p := range []pool.Priority{pool.Highest, pool.High, pool.Normal, pool.Low, pool.Lowest} {
		d.queues[p] = list.New()
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	for {
		select {
		case j := <-d.jobs:
			j()
		case <-d.quit:
			return
		}
	}
}

func (d *Dispatcher) post(j func()) {
	select {
	case d.jobs <- j:
	case <-d.quit:
	}
}

// Exec enqueues one request. Returns synchronously with a QUEUE_OVERFLOW
// error when backpressure rejects it outright; otherwise the request's
// callback fires exactly once, asynchronously, with the eventual result.
func (d *Dispatcher) Exec(ctx context.Context, cb func(Result), req *Request) errors.Error {
	req.cb = cb
	_ = req.cancelledValue()
	return d.doExec(ctx, req, false)
}

// doExec is the enqueue path shared by Exec and every retry re-entry
// (session-refresh completion, concurrent-refresh race). regenId
// regenerates the request's wire id first, as required on every retry; a
// request built without one (ID left empty by its creator) also gets one
// on its very first pass through here.
func (d *Dispatcher) doExec(ctx context.Context, req *Request, regenId bool) errors.Error {
	if regenId || req.ID == "" {
		regenerateID(req)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.PolicyAborted.Error()
	}

	if req.Priority != pool.Highest {
		limit := d.maxQueueDepth
		if l, ok := d.perPriorityDepth[req.Priority]; ok {
			limit = l
		}
		depth := d.queues[req.Priority].Len() + d.waiters[req.Priority]
		if depth > limit {
			d.mu.Unlock()
			return errors.PolicyQueueOverflow.Error()
		}
	}

	if req.Session != nil && !req.Session.IsNull() && !req.Session.IsValid() {
		sid := req.Session.ID()
		q, ok := d.sessionQ[sid]
		if !ok {
			q = list.New()
			d.sessionQ[sid] = q
		}
		q.PushBack(req)
		d.waiters[req.Priority]++
		d.mu.Unlock()
		return nil
	}

	d.queues[req.Priority].PushBack(req)
	d.mu.Unlock()

	d.post(func() { d.dequeue(req.Priority) })
	return nil
}

// reEnter re-enters doExec for a request released by a refresh (successful
// or concurrently-completed session), regenerating its id. Unlike Exec,
// nothing is waiting synchronously on a return value here, so a rejection
// (closed dispatcher, queue overflow) is delivered to the request's own
// callback instead of being silently dropped.
func (d *Dispatcher) reEnter(req *Request) {
	if err := d.doExec(context.Background(), req, true); err != nil {
		req.invoke(Result{Status: StatusError, Err: err})
	}
}

// dequeue drains the given priority's queue while the pool has capacity.
func (d *Dispatcher) dequeue(priority pool.Priority) {
	for {
		d.mu.Lock()
		if d.closed || !d.pool.CanSend(priority) {
			d.mu.Unlock()
			return
		}
		q := d.queues[priority]
		if q.Len() == 0 {
			d.mu.Unlock()
			return
		}
		front := q.Remove(q.Front()).(*Request)
		d.mu.Unlock()

		if front.IsCancelled() {
			continue
		}
		d.sendRequest(front)
	}
}

func (d *Dispatcher) sendRequest(req *Request) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()

	if closed {
		req.invoke(Result{Status: StatusAborted})
		d.post(func() { d.dequeue(req.Priority) })
		return
	}

	buffers := serialize(req)
	d.pool.Send(context.Background(), req.Priority, buffers, func(err errors.Error, conn libclt.Client) {
		if err != nil {
			if !req.IsCancelled() {
				req.invoke(Result{Status: StatusError, Err: err})
			}
			d.post(func() { d.dequeue(req.Priority) })
			return
		}
		d.recvResponse(req, conn)
	})
}

func (d *Dispatcher) recvResponse(req *Request, conn libclt.Client) {
	buf := make([]byte, 64*1024)
	d.pool.Recv(context.Background(), conn, buf, func(n int, rerr errors.Error) {
		if rerr != nil {
			if !req.IsCancelled() {
				req.invoke(Result{Status: StatusError, Err: rerr})
			}
			d.post(func() { d.dequeue(req.Priority) })
			return
		}

		status, payload := parseEnvelope(buf[:n])

		if status == StatusAuthError && req.Session != nil {
			req.Session.SetValid(false)
			d.refreshSession(req, payload)
			d.post(func() { d.dequeue(req.Priority) })
			return
		}

		if status != StatusSuccess {
			req.invoke(Result{Status: status, Err: errorsFromPayload(payload)})
		} else {
			req.invoke(Result{Status: StatusSuccess, Message: payload})
		}

		d.post(func() { d.dequeue(req.Priority) })
	})
}

// parseEnvelope is a placeholder wire parser: the first byte is the status
// code, the remainder is the payload. Real wire framing is intentionally
// out of this component's scope (see top-level RPC framing in server).
func parseEnvelope(buf []byte) (Status, []byte) {
	if len(buf) == 0 {
		return StatusError, nil
	}
	return Status(buf[0]), buf[1:]
}

func errorsFromPayload(payload []byte) error {
	return errors.TransportBroken.Error(stringError(payload))
}

type stringError string

func (s stringError) Error() string { return string(s) }

// refreshSession ensures at most one outstanding refresh per session-id.
func (d *Dispatcher) refreshSession(req *Request, lastResponse []byte) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	if req.Session.IsValid() {
		d.mu.Unlock()
		d.post(func() { d.reEnter(req) })
		return
	}

	sid := req.Session.ID()
	d.waiters[req.Priority]++
	q, ok := d.sessionQ[sid]
	if !ok {
		q = list.New()
		d.sessionQ[sid] = q
	}
	q.PushBack(req)

	alreadyRefreshing := req.Session.IsRefreshing()
	d.mu.Unlock()

	if alreadyRefreshing {
		return
	}

	req.Session.Refresh(d, lastResponse, func(refreshErr error) {
		d.post(func() { d.completeRefresh(sid, refreshErr) })
	})
}

func (d *Dispatcher) completeRefresh(sid string, refreshErr error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	q, ok := d.sessionQ[sid]
	delete(d.sessionQ, sid)
	d.mu.Unlock()

	if !ok {
		return
	}

	for e := q.Front(); e != nil; e = e.Next() {
		r := e.Value.(*Request)

		d.mu.Lock()
		d.waiters[r.Priority]--
		d.mu.Unlock()

		if refreshErr != nil {
			r.invoke(Result{Status: StatusError, Err: refreshErr})
			continue
		}
		d.reEnter(r)
	}
}

// Close drains every queued and waiting request, then closes the pool.
func (d *Dispatcher) Close(ctx context.Context, cb func(errors.Error), callbackRequests bool) {
	d.mu.Lock()
	d.closed = true

	drain := func(q *list.List) {
		for e := q.Front(); e != nil; e = e.Next() {
			r := e.Value.(*Request)
			if callbackRequests {
				r.invoke(Result{Status: StatusAborted})
			}
		}
		q.Init()
	}

	for _, q := range d.queues {
		drain(q)
	}
	for _, q := range d.sessionQ {
		drain(q)
	}
	d.sessionQ = make(map[string]*list.List)
	for p := range d.waiters {
		d.waiters[p] = 0
	}
	d.mu.Unlock()

	d.pool.Close(ctx, func(err errors.Error) {
		close(d.quit)
		cb(err)
	})
}
