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

// Package client defines the dial-side byte-transport contract implemented
// by the tcp, udp, unix and unixgram subpackages.
package client

import (
	"context"
	"io"
	"net"

	"github.com/sabouaram/vaultrpc/socket/config"
)

// Client is a dialed byte transport: a plain io.ReadWriteCloser plus the
// addressing accessors the secure-stream driver needs to label a session.
type Client interface {
	io.ReadWriteCloser
	Connect(ctx context.Context) error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// New dials cfg.Network/cfg.Address, wrapping the connection in TLS when
// cfg.TLS.Enabled is set.
func New(cfg config.Client) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &dialer{cfg: cfg}, nil
}
