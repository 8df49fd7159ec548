/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package config describes the byte-transport endpoints (client dial
// targets, server listen targets) shared by the socket/client and
// socket/server packages.
package config

import (
	"errors"

	libtls "github.com/sabouaram/vaultrpc/certificates"
	libptc "github.com/sabouaram/vaultrpc/network/protocol"
)

var (
	ErrInvalidAddress  = errors.New("socket/config: address is required")
	ErrInvalidProtocol = errors.New("socket/config: unsupported network protocol")
	ErrInvalidTLSConfig = errors.New("socket/config: TLS is only valid on stream protocols")
)

// TLS carries the optional transport security layer for a socket endpoint.
type TLS struct {
	Enabled bool
	Config  libtls.TLSConfig
}

func (t TLS) validate(p libptc.NetworkProtocol) error {
	if !t.Enabled {
		return nil
	}

	switch p {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6, libptc.NetworkUnix:
		return nil
	default:
		return ErrInvalidTLSConfig
	}
}

// Server describes a listen endpoint.
type Server struct {
	Network libptc.NetworkProtocol
	Address string
	TLS     TLS
}

func (s Server) Validate() error {
	if s.Network == libptc.NetworkEmpty {
		return ErrInvalidProtocol
	}
	if s.Address == "" {
		return ErrInvalidAddress
	}
	return s.TLS.validate(s.Network)
}

// Client describes a dial endpoint.
type Client struct {
	Network libptc.NetworkProtocol
	Address string
	TLS     TLS
}

func (c Client) Validate() error {
	if c.Network == libptc.NetworkEmpty {
		return ErrInvalidProtocol
	}
	if c.Address == "" {
		return ErrInvalidAddress
	}
	return c.TLS.validate(c.Network)
}
