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

package socks5

import "github.com/sabouaram/vaultrpc/errors"

// WrapUDP prepends the SOCKS5 UDP relay header in front of payload, for
// datagrams sent to an associated relay.
func WrapUDP(dst Endpoint, payload []byte) []byte {
	out := make([]byte, 0, 10+len(dst.Domain)+len(payload))
	out = append(out, 0, 0, 0, dst.Atyp)

	switch dst.Atyp {
	case atypDomain:
		d := []byte(dst.Domain)
		out = append(out, byte(len(d)))
		out = append(out, d...)
	default:
		out = append(out, dst.Addr...)
	}

	out = append(out, byte(dst.Port>>8), byte(dst.Port))
	return append(out, payload...)
}

// UnwrapUDP strips the SOCKS5 UDP relay header from an inbound datagram,
// recovering the original source endpoint and payload.
func UnwrapUDP(packet []byte) (src Endpoint, payload []byte, err errors.Error) {
	if len(packet) < 4 {
		return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
	}

	atyp := packet[3]
	rest := packet[4:]
	src.Atyp = atyp

	switch atyp {
	case atypIPv4:
		if len(rest) < 6 {
			return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
		}
		src.Addr = append([]byte{}, rest[0:4]...)
		src.Port = uint16(rest[4])<<8 | uint16(rest[5])
		return src, rest[6:], nil
	case atypIPv6:
		if len(rest) < 18 {
			return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
		}
		src.Addr = append([]byte{}, rest[0:16]...)
		src.Port = uint16(rest[16])<<8 | uint16(rest[17])
		return src, rest[18:], nil
	case atypDomain:
		if len(rest) < 1 {
			return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
		}
		n := int(rest[0])
		if len(rest) < 1+n+2 {
			return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
		}
		src.Domain = string(rest[1 : 1+n])
		src.Port = uint16(rest[1+n])<<8 | uint16(rest[1+n+1])
		return src, rest[1+n+2:], nil
	default:
		return Endpoint{}, nil, errors.ProxyInvalidParameters.Error()
	}
}
