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

// Package server implements the per-connection RPC request loop: header
// framing, optional auth dispatch, business dispatch, and response framing,
// strictly sequential on each connection.
package server

import (
	"context"
	"encoding/binary"
	"net"
	"sync/atomic"

	"github.com/sabouaram/vaultrpc/errors"
	libfld "github.com/sabouaram/vaultrpc/logger/fields"
	liblvl "github.com/sabouaram/vaultrpc/logger/level"
	liblog "github.com/sabouaram/vaultrpc/logger"
	"github.com/sabouaram/vaultrpc/size"
	libsrv "github.com/sabouaram/vaultrpc/socket/server"
)

type Status uint8

const (
	StatusSuccess Status = iota
	StatusAuthError
	StatusFormatError
	StatusRequestTooBig
	StatusConnectionClosed
	StatusInternalServerError
)

const headerSize = 4

// Request is the parsed body of one inbound RPC call.
type Request struct {
	Service     string
	Method      string
	Version     string
	Topic       string
	MessageType string
	Payload     []byte
	MethodAuth  []byte
}

// AuthResult is what the auth dispatcher reports back.
type AuthResult struct {
	Status          Status
	CloseConnection bool
	Payload         []byte
}

// AuthDispatcher authenticates a parsed request before it reaches the
// business dispatcher. Optional: a loop configured without one skips
// straight to dispatch.
type AuthDispatcher func(ctx context.Context, req Request) AuthResult

// HandlerResult is what the business dispatcher reports back.
type HandlerResult struct {
	Status          Status
	CloseConnection bool
	Payload         []byte
}

// Handler is the business dispatcher invoked once a request clears auth.
type Handler func(ctx context.Context, req Request) HandlerResult

// Parser turns a raw body frame into a Request.
type Parser func(body []byte) (Request, error)

// Config configures one Loop. Mapstructure-tagged so it can be bound from
// a viper instance via LoadConfig; Auth/Handler/Parse/Log are wired up in
// code rather than config, since they're behavior, not data.
type Config struct {
	MaxMessageSize size.Size `mapstructure:"max_message_size"`
	Auth           AuthDispatcher
	Handler        Handler
	Parse          Parser
	Log            liblog.Logger
}

// Stats is a point-in-time snapshot of loop activity, exposed for
// operational visibility.
type Stats struct {
	Accepted  uint64
	Completed uint64
	AuthFail  uint64
	Errors    uint64
}

// Loop drives one connection's request/response pipeline to completion,
// looping back to await-header after every successfully sent response.
type Loop struct {
	cfg  Config
	conn net.Conn

	stats statsCounters
}

type statsCounters struct {
	accepted  uint64
	completed uint64
	authFail  uint64
	errors    uint64
}

func NewLoop(conn net.Conn, cfg Config) *Loop {
	return &Loop{cfg: cfg, conn: conn}
}

// Run drives the connection until it is closed or a fatal transport error
// occurs.
func (l *Loop) Run(ctx context.Context) {
	defer l.conn.Close()

	for {
		req, status, ferr := l.awaitAndParse(ctx)
		if ferr != nil {
			return
		}
		if req == nil {
			continue
		}

		atomic.AddUint64(&l.stats.accepted, 1)

		if status != StatusSuccess {
			l.sendResponse(status, nil)
			continue
		}

		rctx := l.pushScope(ctx, *req)
		status, payload, closeConn := l.runPipeline(rctx, *req)

		if status == StatusConnectionClosed {
			return
		}

		if !l.sendResponse(status, payload) {
			return
		}

		atomic.AddUint64(&l.stats.completed, 1)

		if closeConn {
			return
		}
	}
}

// awaitAndParse implements await-header, validate-header, await-body and
// parse. A nil *Request with a nil error means "zero-length header, loop
// back to await-header".
func (l *Loop) awaitAndParse(ctx context.Context) (*Request, Status, error) {
	header := make([]byte, headerSize)
	if _, err := readFull(l.conn, header); err != nil {
		return nil, 0, err
	}

	bodySize := binary.LittleEndian.Uint32(header)
	if bodySize == 0 {
		return nil, 0, nil
	}
	if l.cfg.MaxMessageSize > 0 && size.Size(bodySize) > l.cfg.MaxMessageSize {
		drainAndDiscard(l.conn, int64(bodySize))
		return &Request{}, StatusRequestTooBig, nil
	}

	body := make([]byte, bodySize)
	if _, err := readFull(l.conn, body); err != nil {
		return nil, 0, err
	}

	req, err := l.cfg.Parse(body)
	if err != nil {
		return &Request{}, StatusFormatError, nil
	}

	return &req, StatusSuccess, nil
}

// runPipeline implements auth (if configured) and dispatch.
func (l *Loop) runPipeline(ctx context.Context, req Request) (Status, []byte, bool) {
	if l.cfg.Auth != nil {
		ar := l.cfg.Auth(ctx, req)
		if ar.CloseConnection {
			return StatusConnectionClosed, nil, true
		}
		if ar.Status != StatusSuccess {
			atomic.AddUint64(&l.stats.authFail, 1)
			return ar.Status, ar.Payload, false
		}
	}

	hr := l.cfg.Handler(ctx, req)
	if hr.Status != StatusSuccess {
		atomic.AddUint64(&l.stats.errors, 1)
	}
	return hr.Status, hr.Payload, hr.CloseConnection
}

func (l *Loop) sendResponse(status Status, payload []byte) bool {
	body := make([]byte, 1+len(payload))
	body[0] = byte(status)
	copy(body[1:], payload)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header, uint32(len(body)))

	if _, err := l.conn.Write(header); err != nil {
		return false
	}
	if _, err := l.conn.Write(body); err != nil {
		return false
	}
	return true
}

// pushScope attaches structured fields identifying the request to ctx for
// the duration of auth/dispatch; the scope is simply not propagated past
// the pipeline call, which is this component's equivalent of popping it.
func (l *Loop) pushScope(ctx context.Context, req Request) context.Context {
	if l.cfg.Log == nil {
		return ctx
	}

	f := libfld.New(ctx).
		Add("service", req.Service).
		Add("method", req.Method).
		Add("topic", req.Topic).
		Add("message_type", req.MessageType)

	l.cfg.Log.Entry(liblvl.DebugLevel, "dispatching request").FieldSet(f).Log()
	return f
}

func (l *Loop) Stats() Stats {
	return Stats{
		Accepted:  atomic.LoadUint64(&l.stats.accepted),
		Completed: atomic.LoadUint64(&l.stats.completed),
		AuthFail:  atomic.LoadUint64(&l.stats.authFail),
		Errors:    atomic.LoadUint64(&l.stats.errors),
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, errors.TransportEOF.Error(err)
		}
	}
	return total, nil
}

func drainAndDiscard(conn net.Conn, remaining int64) {
	buf := make([]byte, 32*1024)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		r, err := conn.Read(buf[:n])
		remaining -= int64(r)
		if err != nil {
			return
		}
	}
}

// Server accepts connections via the underlying socket server and runs one
// Loop per connection, each on its own goroutine-as-event-loop.
type Server struct {
	sock libsrv.Server
	cfg  Config
}

func New(sock libsrv.Server, cfg Config) *Server {
	return &Server{sock: sock, cfg: cfg}
}

func (s *Server) Serve(ctx context.Context) error {
	return s.sock.Serve(ctx, func(cctx context.Context, conn net.Conn) {
		NewLoop(conn, s.cfg).Run(cctx)
	})
}

func (s *Server) Close() error {
	return s.sock.Close()
}
