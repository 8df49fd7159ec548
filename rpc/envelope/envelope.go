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

// Package envelope is the wire-level request record shared by rpc/client's
// serializer and rpc/server's default parser, so a dispatcher and a loop
// built from this tree can actually talk to each other: string fields are
// each prefixed by a u16 LE byte length, byte-slice fields by a u32 LE byte
// length, all concatenated with no other delimiter.
package envelope

import (
	"encoding/binary"

	"github.com/sabouaram/vaultrpc/errors"
)

// Request is the envelope record carried as the body of one length-prefixed
// RPC frame (the frame's own 4-byte LE length header is added by rpc/pool).
type Request struct {
	ID          string
	Service     string
	Method      string
	Version     string
	Topic       string
	MessageType string
	MethodAuth  []byte
	Payload     []byte
}

// Encode renders r as a single buffer.
func Encode(r Request) []byte {
	strs := []string{r.ID, r.Service, r.Method, r.Version, r.Topic, r.MessageType}
	bufs := [][]byte{r.MethodAuth, r.Payload}

	size := 0
	for _, s := range strs {
		size += 2 + len(s)
	}
	for _, b := range bufs {
		size += 4 + len(b)
	}

	out := make([]byte, size)
	off := 0
	for _, s := range strs {
		binary.LittleEndian.PutUint16(out[off:], uint16(len(s)))
		off += 2
		off += copy(out[off:], s)
	}
	for _, b := range bufs {
		binary.LittleEndian.PutUint32(out[off:], uint32(len(b)))
		off += 4
		off += copy(out[off:], b)
	}

	return out
}

// Decode reverses Encode, rejecting a buffer whose declared field lengths
// run past the bytes actually available.
func Decode(buf []byte) (Request, errors.Error) {
	var r Request
	strFields := []*string{&r.ID, &r.Service, &r.Method, &r.Version, &r.Topic, &r.MessageType}

	off := 0
	for _, dst := range strFields {
		if off+2 > len(buf) {
			return Request{}, errors.FramingMalformedEnvelope.Error()
		}
		n := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if off+n > len(buf) {
			return Request{}, errors.FramingMalformedEnvelope.Error()
		}
		*dst = string(buf[off : off+n])
		off += n
	}

	byteFields := []*[]byte{&r.MethodAuth, &r.Payload}
	for _, dst := range byteFields {
		if off+4 > len(buf) {
			return Request{}, errors.FramingMalformedEnvelope.Error()
		}
		n := int(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		if off+n > len(buf) {
			return Request{}, errors.FramingMalformedEnvelope.Error()
		}
		if n > 0 {
			*dst = append([]byte{}, buf[off:off+n]...)
		}
		off += n
	}

	return r, nil
}
