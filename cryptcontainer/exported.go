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

package cryptcontainer

import "github.com/sabouaram/vaultrpc/errors"

// EncodeHeader renders h as its fixed 23-byte on-disk form. Exposed for
// cryptfile, which maintains a container's header incrementally rather than
// through a single Pack call.
func EncodeHeader(h Header) []byte {
	return h.encode()
}

// DecodeHeader parses the fixed 23-byte header prefix of a container.
func DecodeHeader(buf []byte) (Header, errors.Error) {
	return decodeHeader(buf)
}

// EncodeDescriptor renders d as its on-disk form.
func EncodeDescriptor(d Descriptor) []byte {
	return d.encode()
}

// DecodeDescriptor parses a descriptor previously produced by EncodeDescriptor.
func DecodeDescriptor(buf []byte) (Descriptor, errors.Error) {
	return decodeDescriptor(buf)
}

// WriteCiphertextSize patches the ciphertext-size field of an
// already-encoded header buffer in place.
func WriteCiphertextSize(buf []byte, size uint64) {
	writeCiphertextSize(buf, size)
}

// WritePlaintextSize patches the plaintext-size field of an already-encoded
// header buffer in place.
func WritePlaintextSize(buf []byte, size uint64) {
	writePlaintextSize(buf, size)
}

// EffectiveWindow exposes Descriptor's chunk-window sizing rule.
func (d Descriptor) EffectiveWindow(seqnum int) int {
	return d.effectiveWindow(seqnum)
}
