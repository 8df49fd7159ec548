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

// Package securestream drives a TLS handshake and application data exchange
// against any byte-oriented transport, serializing every state transition
// through one owning goroutine.
package securestream

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"sync"
	"time"

	"github.com/sabouaram/vaultrpc/certificates"
	"github.com/sabouaram/vaultrpc/errors"
)

type State uint8

const (
	StateIdle State = iota
	StateHandshaking
	StateOpen
	StateShuttingDown
	StateClosed
	StateFailed
)

// VerifyPolicy controls how peer-certificate verification failures are
// handled: certain error kinds can be ignored outright, and failures can
// either abort the handshake immediately or be collected and reported once
// verification of the whole chain completes.
type VerifyPolicy struct {
	IgnoredErrors   map[x509.InvalidReason]bool
	CollectAllErrors bool
}

func (p VerifyPolicy) ignores(reason x509.InvalidReason) bool {
	return p.IgnoredErrors != nil && p.IgnoredErrors[reason]
}

// job is one task processed by the stream's owning goroutine.
type job func()

// Stream pumps a TLS connection against transport, a plain byte-oriented
// net.Conn (TCP, TLS-wrapped TCP, or a UDP/unix adapter from the socket
// package). All state transitions run on loop, the single goroutine that
// owns this stream; Prepare/Read/Write/Shutdown/Cancel submit work to it and
// block for the result.
type Stream struct {
	transport net.Conn
	tlsConn   *tls.Conn
	cfg       certificates.TLSConfig
	isClient  bool
	policy    VerifyPolicy

	mu    sync.Mutex
	state State
	err   errors.Error

	jobs   chan job
	done   chan struct{}
	once   sync.Once
}

// New wraps transport in a TLS client or server stream. cfg supplies the
// certificate bundle and base *tls.Config; policy governs peer-certificate
// verification leniency.
func New(transport net.Conn, cfg certificates.TLSConfig, isClient bool, policy VerifyPolicy) *Stream {
	s := &Stream{
		transport: transport,
		cfg:       cfg,
		isClient:  isClient,
		policy:    policy,
		state:     StateIdle,
		jobs:      make(chan job, 8),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Stream) loop() {
	for {
		select {
		case j := <-s.jobs:
			j()
		case <-s.done:
			return
		}
	}
}

func (s *Stream) submit(ctx context.Context, j job) error {
	result := make(chan struct{})
	wrapped := func() {
		j()
		close(result)
	}

	select {
	case s.jobs <- wrapped:
	case <-s.done:
		return errors.TransportCancelled.Error()
	}

	select {
	case <-result:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errors.TransportCancelled.Error()
	}
}

func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Stream) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Prepare runs the TLS handshake to completion, pumping the negotiated
// bytes against transport. cb is invoked exactly once with the outcome.
func (s *Stream) Prepare(ctx context.Context, cb func(errors.Error)) {
	err := s.submit(ctx, func() {
		s.setState(StateHandshaking)

		tlsCfg := s.buildConfig()
		if s.isClient {
			s.tlsConn = tls.Client(s.transport, tlsCfg)
		} else {
			s.tlsConn = tls.Server(s.transport, tlsCfg)
		}

		if deadline, ok := ctx.Deadline(); ok {
			_ = s.tlsConn.SetDeadline(deadline)
		}

		if hErr := s.tlsConn.HandshakeContext(ctx); hErr != nil {
			s.err = errors.CryptoTagVerifyFailed.Error(hErr)
			s.setState(StateFailed)
			cb(s.err)
			return
		}

		s.setState(StateOpen)
		cb(nil)
	})

	if err != nil {
		cb(errors.TransportCancelled.Error(err))
	}
}

func (s *Stream) buildConfig() *tls.Config {
	var base *tls.Config
	if s.cfg != nil {
		base = s.cfg.TlsConfig("")
	} else {
		base = &tls.Config{}
	}

	cfg := base.Clone()
	if cfg.InsecureSkipVerify {
		return cfg
	}

	cfg.VerifyPeerCertificate = func(_ [][]byte, chains [][]*x509.Certificate) error {
		return s.verifyChains(chains)
	}
	return cfg
}

func (s *Stream) verifyChains(chains [][]*x509.Certificate) error {
	if len(s.policy.IgnoredErrors) == 0 && !s.policy.CollectAllErrors {
		return nil
	}

	var collected []error
	for _, chain := range chains {
		for _, cert := range chain {
			opts := x509.VerifyOptions{CurrentTime: time.Now()}
			if _, err := cert.Verify(opts); err != nil {
				if ive, ok := err.(x509.CertificateInvalidError); ok && s.policy.ignores(ive.Reason) {
					continue
				}
				if !s.policy.CollectAllErrors {
					return err
				}
				collected = append(collected, err)
			}
		}
	}

	if len(collected) > 0 {
		return collected[0]
	}
	return nil
}

// Read fills buf with up to maxSize bytes of decrypted application data.
func (s *Stream) Read(ctx context.Context, buf []byte, maxSize int) (int, errors.Error) {
	var n int
	var rerr error

	err := s.submit(ctx, func() {
		if s.tlsConn == nil {
			rerr = errors.TransportBroken.Error()
			return
		}
		if maxSize < len(buf) {
			buf = buf[:maxSize]
		}
		n, rerr = s.tlsConn.Read(buf)
	})
	if err != nil {
		return 0, errors.TransportCancelled.Error(err)
	}
	if rerr != nil {
		return n, errors.TransportBroken.Error(rerr)
	}
	return n, nil
}

// Write encrypts and sends size bytes of buf.
func (s *Stream) Write(ctx context.Context, buf []byte, size int) (int, errors.Error) {
	var n int
	var werr error

	err := s.submit(ctx, func() {
		if s.tlsConn == nil {
			werr = errors.TransportBroken.Error()
			return
		}
		if size > len(buf) {
			size = len(buf)
		}
		n, werr = s.tlsConn.Write(buf[:size])
	})
	if err != nil {
		return 0, errors.TransportCancelled.Error(err)
	}
	if werr != nil {
		return n, errors.TransportBroken.Error(werr)
	}
	return n, nil
}

// Shutdown initiates the orderly close-notify sequence.
func (s *Stream) Shutdown(ctx context.Context) errors.Error {
	s.setState(StateShuttingDown)

	var cerr error
	err := s.submit(ctx, func() {
		if s.tlsConn != nil {
			cerr = s.tlsConn.Close()
		}
	})

	s.setState(StateClosed)
	s.closeLoop()

	if err != nil {
		return errors.TransportCancelled.Error(err)
	}
	if cerr != nil {
		return errors.TransportBroken.Error(cerr)
	}
	return nil
}

// Cancel aborts any pending read/write and tears down the loop without
// waiting for a close-notify round trip.
func (s *Stream) Cancel() {
	s.setState(StateFailed)
	_ = s.transport.Close()
	s.closeLoop()
}

func (s *Stream) closeLoop() {
	s.once.Do(func() { close(s.done) })
}

// Suite reports the negotiated cipher suite name, valid once State is Open.
func (s *Stream) Suite() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tlsConn == nil {
		return ""
	}
	return tls.CipherSuiteName(s.tlsConn.ConnectionState().CipherSuite)
}

// NegotiatedProtocol reports the ALPN protocol chosen during handshake, if
// any.
func (s *Stream) NegotiatedProtocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tlsConn == nil {
		return ""
	}
	return s.tlsConn.ConnectionState().NegotiatedProtocol
}
