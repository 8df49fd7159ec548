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

// Package socks5 drives the client half of a SOCKS5 handshake as an explicit
// state machine: the caller owns the socket and is told, after every step,
// what to send and how many bytes to read back next.
package socks5

import "github.com/sabouaram/vaultrpc/errors"

type State uint8

const (
	StateIdle State = iota
	StateNegotiation
	StateAuth
	StateConnect
	StateReceiveAddress
	StateDone
	StateFailed
)

// StepStatus tells the caller what I/O to perform before calling Step again.
type StepStatus uint8

const (
	SendAndReceive StepStatus = iota
	Receive
	Done
	Fail
)

const (
	version5 = 5

	methodNoAuth           = 0
	methodUsernamePassword = 2
	methodNoneAcceptable   = 0xFF

	cmdConnect      = 1
	cmdUDPAssociate = 3

	atypIPv4   = 1
	atypDomain = 3
	atypIPv6   = 4
)

// Endpoint is a resolved SOCKS5 address: an IP/domain plus port.
type Endpoint struct {
	Atyp   byte
	Addr   []byte
	Domain string
	Port   uint16
}

// Auth carries optional username/password credentials.
type Auth struct {
	Enabled  bool
	Username string
	Password string
}

// Target is the connect or associate request the caller wants proxied.
type Target struct {
	UDPAssociate bool
	Atyp         byte
	Addr         []byte
	Domain       string
	Port         uint16
}

// Machine is one client-side SOCKS5 handshake.
type Machine struct {
	state  State
	auth   Auth
	target Target

	atyp    byte
	domLen  int
	remBody int

	BoundAddr Endpoint
	Err       errors.Error
}

func New(auth Auth, target Target) *Machine {
	return &Machine{state: StateIdle, auth: auth, target: target}
}

func (m *Machine) State() State {
	return m.state
}

// Step advances the state machine. out is the buffer to send (nil on a
// pure Receive step); wantRecv is how many bytes the caller must read back
// before calling Step again with those bytes in in.
func (m *Machine) Step(in []byte) (out []byte, wantRecv int, status StepStatus) {
	switch m.state {
	case StateIdle:
		return m.stepIdle()
	case StateNegotiation:
		return m.stepNegotiation(in)
	case StateAuth:
		return m.stepAuth(in)
	case StateConnect:
		return m.stepConnectReply(in)
	case StateReceiveAddress:
		return m.stepReceiveAddress(in)
	default:
		return nil, 0, Fail
	}
}

func (m *Machine) fail(err errors.Error) (out []byte, wantRecv int, status StepStatus) {
	m.Err = err
	m.state = StateFailed
	return nil, 0, Fail
}

func (m *Machine) stepIdle() ([]byte, int, StepStatus) {
	methods := []byte{methodNoAuth}
	if m.auth.Enabled {
		methods = append(methods, methodUsernamePassword)
	}

	out := make([]byte, 0, 2+len(methods))
	out = append(out, version5, byte(len(methods)))
	out = append(out, methods...)

	m.state = StateNegotiation
	return out, 2, SendAndReceive
}

func (m *Machine) stepNegotiation(in []byte) ([]byte, int, StepStatus) {
	if len(in) < 2 || in[0] != version5 {
		return m.fail(errors.ProxyUnsupportedVersion.Error())
	}

	switch in[1] {
	case methodNoAuth:
		return m.sendConnect()
	case methodUsernamePassword:
		if !m.auth.Enabled {
			return m.fail(errors.ProxyUnsupportedAuthMethod.Error())
		}
		return m.sendAuth()
	default:
		return m.fail(errors.ProxyUnsupportedAuthMethod.Error())
	}
}

func (m *Machine) sendAuth() ([]byte, int, StepStatus) {
	u := []byte(m.auth.Username)
	p := []byte(m.auth.Password)

	out := make([]byte, 0, 3+len(u)+len(p))
	out = append(out, 1, byte(len(u)))
	out = append(out, u...)
	out = append(out, byte(len(p)))
	out = append(out, p...)

	m.state = StateAuth
	return out, 2, SendAndReceive
}

func (m *Machine) stepAuth(in []byte) ([]byte, int, StepStatus) {
	if len(in) < 2 || in[1] != 0 {
		return m.fail(errors.ProxyAuthFailed.Error())
	}
	return m.sendConnect()
}

func (m *Machine) sendConnect() ([]byte, int, StepStatus) {
	cmd := byte(cmdConnect)
	if m.target.UDPAssociate {
		cmd = cmdUDPAssociate
	}

	out := make([]byte, 0, 22)
	out = append(out, version5, cmd, 0, m.target.Atyp)

	switch m.target.Atyp {
	case atypDomain:
		d := []byte(m.target.Domain)
		out = append(out, byte(len(d)))
		out = append(out, d...)
	default:
		out = append(out, m.target.Addr...)
	}

	out = append(out, byte(m.target.Port>>8), byte(m.target.Port))

	m.state = StateConnect
	return out, 5, SendAndReceive
}

func (m *Machine) stepConnectReply(in []byte) ([]byte, int, StepStatus) {
	if len(in) < 5 || in[0] != version5 {
		return m.fail(errors.ProxyUnsupportedVersion.Error())
	}
	if in[1] != 0 {
		return m.fail(errors.ProxyReportedError.Error())
	}

	m.atyp = in[3]

	switch m.atyp {
	case atypIPv4:
		m.remBody = 3 + 2
	case atypIPv6:
		m.remBody = 15 + 2
	case atypDomain:
		m.domLen = int(in[4])
		m.remBody = m.domLen + 2
	default:
		return m.fail(errors.ProxyInvalidParameters.Error())
	}

	if m.atyp == atypIPv4 || m.atyp == atypIPv6 {
		m.BoundAddr.Addr = []byte{in[4]}
	}

	m.state = StateReceiveAddress
	return nil, m.remBody, Receive
}

func (m *Machine) stepReceiveAddress(in []byte) ([]byte, int, StepStatus) {
	if len(in) < m.remBody {
		return m.fail(errors.ProxyInvalidParameters.Error())
	}

	m.BoundAddr.Atyp = m.atyp

	switch m.atyp {
	case atypIPv4:
		m.BoundAddr.Addr = append(m.BoundAddr.Addr, in[0:3]...)
		m.BoundAddr.Port = uint16(in[3])<<8 | uint16(in[4])
	case atypIPv6:
		m.BoundAddr.Addr = append(m.BoundAddr.Addr, in[0:15]...)
		m.BoundAddr.Port = uint16(in[15])<<8 | uint16(in[16])
	case atypDomain:
		m.BoundAddr.Domain = string(in[0:m.domLen])
		m.BoundAddr.Port = uint16(in[m.domLen])<<8 | uint16(in[m.domLen+1])
	}

	m.state = StateDone
	return nil, 0, Done
}
