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

package server

import (
	"net"
	"time"
)

// packetConn adapts a net.PacketConn to net.Conn by remembering the peer of
// the last datagram received, so a Handler can treat a connectionless
// transport like a stream for the duration of one exchange.
type packetConn struct {
	net.PacketConn
	peer net.Addr
}

func (p *packetConn) Read(b []byte) (int, error) {
	n, addr, err := p.PacketConn.ReadFrom(b)
	if err == nil {
		p.peer = addr
	}
	return n, err
}

func (p *packetConn) Write(b []byte) (int, error) {
	if p.peer == nil {
		return 0, net.ErrWriteToConnected
	}
	return p.PacketConn.WriteTo(b, p.peer)
}

func (p *packetConn) RemoteAddr() net.Addr {
	return p.peer
}

func (p *packetConn) SetDeadline(t time.Time) error {
	return p.PacketConn.SetDeadline(t)
}

func (p *packetConn) SetReadDeadline(t time.Time) error {
	return p.PacketConn.SetReadDeadline(t)
}

func (p *packetConn) SetWriteDeadline(t time.Time) error {
	return p.PacketConn.SetWriteDeadline(t)
}
