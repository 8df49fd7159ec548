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

// Package pool owns a fixed set of live transports and dispatches
// send/recv pairs onto them, pairing each request's send and matching recv
// on the same connection and returning it to the free list only once both
// have completed.
package pool

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/sabouaram/vaultrpc/errors"
	"github.com/sabouaram/vaultrpc/socket/client"
)

// frameHeaderSize mirrors rpc/server's own header width: every frame on
// the wire, in either direction, is a 4-byte LE length followed by that
// many body bytes.
const frameHeaderSize = 4

// Priority mirrors the request-priority classes used by the client
// dispatcher; the pool itself treats every class the same for backpressure
// purposes (§9 notes weighted-by-priority scheduling as a future option).
type Priority uint8

const (
	Highest Priority = iota
	High
	Normal
	Low
	Lowest
)

type slot struct {
	conn client.Client
	busy bool
}

// Pool dispatches send/recv pairs across a fixed set of client connections.
type Pool struct {
	mu     sync.Mutex
	slots  []*slot
	closed bool
}

// New wraps an already-dialed set of connections into a pool.
func New(conns []client.Client) *Pool {
	p := &Pool{slots: make([]*slot, 0, len(conns))}
	for _, c := range conns {
		p.slots = append(p.slots, &slot{conn: c})
	}
	return p
}

// CanSend reports whether at least one connection is currently free.
func (p *Pool) CanSend(_ Priority) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	for _, s := range p.slots {
		if !s.busy {
			return true
		}
	}
	return false
}

func (p *Pool) acquire() *slot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	for _, s := range p.slots {
		if !s.busy {
			s.busy = true
			return s
		}
	}
	return nil
}

func (p *Pool) release(s *slot) {
	p.mu.Lock()
	s.busy = false
	p.mu.Unlock()
}

// Send writes the concatenated buffers on a free connection, preceded by a
// 4-byte LE length header framing the whole body, and on success yields
// that same connection via cb for the matching Recv. The connection stays
// busy until Recv is called and completes.
func (p *Pool) Send(ctx context.Context, priority Priority, buffers [][]byte, cb func(errors.Error, client.Client)) {
	s := p.acquire()
	if s == nil {
		cb(errors.PolicyQueueOverflow.Error(), nil)
		return
	}

	total := 0
	for _, b := range buffers {
		total += len(b)
	}

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint32(header, uint32(total))

	if _, err := s.conn.Write(header); err != nil {
		p.release(s)
		cb(errors.TransportBroken.Error(err), nil)
		return
	}

	for _, b := range buffers {
		if len(b) == 0 {
			continue
		}
		if _, err := s.conn.Write(b); err != nil {
			p.release(s)
			cb(errors.TransportBroken.Error(err), nil)
			return
		}
	}

	cb(nil, s.conn)
}

// Recv reads a length-prefixed response frame on conn, previously yielded
// by Send, looping each read until the declared header and body are fully
// read, and returns the connection to the free list once that completes or
// fails. buf must be at least as large as the declared body.
func (p *Pool) Recv(ctx context.Context, conn client.Client, buf []byte, cb func(int, errors.Error)) {
	s := p.find(conn)
	if s == nil {
		cb(0, errors.TransportBroken.Error())
		return
	}
	defer p.release(s)

	header := make([]byte, frameHeaderSize)
	if err := readFullConn(conn, header); err != nil {
		cb(0, errors.TransportBroken.Error(err))
		return
	}

	size := int(binary.LittleEndian.Uint32(header))
	if size > len(buf) {
		cb(0, errors.FramingMessageTooBig.Error())
		return
	}

	if size > 0 {
		if err := readFullConn(conn, buf[:size]); err != nil {
			cb(0, errors.TransportBroken.Error(err))
			return
		}
	}

	cb(size, nil)
}

// readFullConn loops conn.Read until buf is completely filled, since a
// single Read on a real socket may return a short read partway through a
// multi-packet frame.
func readFullConn(conn client.Client, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) find(conn client.Client) *slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.conn == conn {
			return s
		}
	}
	return nil
}

// Close cancels and closes every connection.
func (p *Pool) Close(ctx context.Context, cb func(errors.Error)) {
	p.mu.Lock()
	p.closed = true
	slots := append([]*slot{}, p.slots...)
	p.mu.Unlock()

	var first errors.Error
	for _, s := range slots {
		if err := s.conn.Close(); err != nil && first == nil {
			first = errors.TransportBroken.Error(err)
		}
	}
	cb(first)
}
