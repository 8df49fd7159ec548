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
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/sabouaram/vaultrpc/socket/config"
	libptc "github.com/sabouaram/vaultrpc/network/protocol"
)

type listener struct {
	cfg config.Server
	mu  sync.Mutex
	lis net.Listener
	pkt net.PacketConn
}

func (l *listener) isPacket() bool {
	switch l.cfg.Network {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6, libptc.NetworkUnixGram:
		return true
	default:
		return false
	}
}

func (l *listener) listen() (net.Listener, error) {
	lis, err := net.Listen(l.cfg.Network.String(), l.cfg.Address)
	if err != nil {
		return nil, err
	}

	if l.cfg.TLS.Enabled && l.cfg.TLS.Config != nil {
		lis = tls.NewListener(lis, l.cfg.TLS.Config.TLS(""))
	}

	return lis, nil
}

// Serve accepts connections until ctx is cancelled or the listener fails.
// Packet-oriented protocols (udp, unixgram) have no accept loop; each
// datagram is delivered to h over a PacketConn adapter.
func (l *listener) Serve(ctx context.Context, h Handler) error {
	if l.isPacket() {
		return l.servePacket(ctx, h)
	}

	lis, err := l.listen()
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.lis = lis
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = lis.Close()
	}()

	for {
		c, err := lis.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		go h(ctx, c)
	}
}

func (l *listener) servePacket(ctx context.Context, h Handler) error {
	pc, err := net.ListenPacket(l.cfg.Network.String(), l.cfg.Address)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.pkt = pc
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = pc.Close()
	}()

	h(ctx, &packetConn{PacketConn: pc})
	return nil
}

func (l *listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pkt != nil {
		return l.pkt.Close()
	}
	if l.lis == nil {
		return nil
	}
	return l.lis.Close()
}

func (l *listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pkt != nil {
		return l.pkt.LocalAddr()
	}
	if l.lis == nil {
		return nil
	}
	return l.lis.Addr()
}
