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

// Package protocol defines the transport protocol enumeration shared by the
// byte-transport, socket config and secure-stream layers.
package protocol

// NetworkProtocol identifies the transport family used by a listener or dialer.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

var names = map[NetworkProtocol]string{
	NetworkUnix:      "unix",
	NetworkTCP:       "tcp",
	NetworkTCP4:      "tcp4",
	NetworkTCP6:      "tcp6",
	NetworkUDP:       "udp",
	NetworkUDP4:      "udp4",
	NetworkUDP6:      "udp6",
	NetworkIP:        "ip",
	NetworkIP4:       "ip4",
	NetworkIP6:       "ip6",
	NetworkUnixGram:  "unixgram",
}

var byName map[string]NetworkProtocol

func init() {
	byName = make(map[string]NetworkProtocol, len(names))
	for k, v := range names {
		byName[v] = k
	}
}

// String returns the lowercase canonical name, or "" if the value is invalid.
func (n NetworkProtocol) String() string {
	return names[n]
}

// Code returns the same canonical name as String, kept distinct for
// interfaces that expect a "Code() string" accessor.
func (n NetworkProtocol) Code() string {
	return n.String()
}

// Int returns the numeric value of the protocol, or 0 if it is invalid.
func (n NetworkProtocol) Int() int {
	if _, ok := names[n]; !ok {
		return 0
	}
	return int(n)
}

// Int64 is the int64 variant of Int.
func (n NetworkProtocol) Int64() int64 {
	return int64(n.Int())
}

// Uint returns the numeric value of the protocol, or 0 if it is invalid.
func (n NetworkProtocol) Uint() uint {
	if _, ok := names[n]; !ok {
		return 0
	}
	return uint(n)
}

// Uint64 is the uint64 variant of Uint.
func (n NetworkProtocol) Uint64() uint64 {
	return uint64(n.Uint())
}

// Network reports whether the protocol targets a unix socket family
// (unix or unixgram), as opposed to an IP based transport.
func (n NetworkProtocol) Network() bool {
	switch n {
	case NetworkUnix, NetworkUnixGram:
		return false
	default:
		return true
	}
}
