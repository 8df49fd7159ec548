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

package client

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/sabouaram/vaultrpc/socket/config"
)

type dialer struct {
	cfg config.Client
	mu  sync.Mutex
	cnx net.Conn
}

func (d *dialer) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var nd net.Dialer
	c, err := nd.DialContext(ctx, d.cfg.Network.String(), d.cfg.Address)
	if err != nil {
		return err
	}

	if d.cfg.TLS.Enabled && d.cfg.TLS.Config != nil {
		host, _, _ := net.SplitHostPort(d.cfg.Address)
		c = tls.Client(c, d.cfg.TLS.Config.TLS(host))
	}

	d.cnx = c
	return nil
}

func (d *dialer) Read(p []byte) (int, error) {
	d.mu.Lock()
	c := d.cnx
	d.mu.Unlock()
	if c == nil {
		return 0, net.ErrClosed
	}
	return c.Read(p)
}

func (d *dialer) Write(p []byte) (int, error) {
	d.mu.Lock()
	c := d.cnx
	d.mu.Unlock()
	if c == nil {
		return 0, net.ErrClosed
	}
	return c.Write(p)
}

func (d *dialer) Close() error {
	d.mu.Lock()
	c := d.cnx
	d.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func (d *dialer) LocalAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cnx == nil {
		return nil
	}
	return d.cnx.LocalAddr()
}

func (d *dialer) RemoteAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cnx == nil {
		return nil
	}
	return d.cnx.RemoteAddr()
}
