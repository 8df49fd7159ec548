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

// Package cryptcontainer implements the encrypted-container format: a fixed
// header, a self-describing descriptor, and a sequence of AEAD chunks
// produced by cryptchunk.
package cryptcontainer

import (
	"encoding/binary"

	"github.com/sabouaram/vaultrpc/errors"
)

const (
	HeaderSize  = 23
	CurrentVersion byte = 1
)

var magicPrefix = [4]byte{'N', 'G', 'C', '1'}

// Header is the fixed 23-byte on-disk container header.
type Header struct {
	Version        byte
	DescriptorSize uint16
	PlaintextSize  uint64
	CiphertextSize uint64
}

func (h Header) encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magicPrefix[:])
	buf[4] = h.Version
	binary.LittleEndian.PutUint16(buf[5:7], h.DescriptorSize)
	binary.LittleEndian.PutUint64(buf[7:15], h.PlaintextSize)
	binary.LittleEndian.PutUint64(buf[15:23], h.CiphertextSize)
	return buf
}

func decodeHeader(buf []byte) (Header, errors.Error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.ContainerInvalidSize.Error()
	}

	for i := 0; i < 4; i++ {
		if buf[i] != magicPrefix[i] {
			return Header{}, errors.ContainerInvalidPrefix.Error()
		}
	}

	h := Header{
		Version:        buf[4],
		DescriptorSize: binary.LittleEndian.Uint16(buf[5:7]),
		PlaintextSize:  binary.LittleEndian.Uint64(buf[7:15]),
		CiphertextSize: binary.LittleEndian.Uint64(buf[15:23]),
	}

	if h.Version > CurrentVersion {
		return Header{}, errors.ContainerUnsupportedVersion.Error()
	}

	return h, nil
}

// writeCiphertextSize patches the ciphertext-size field of an
// already-written header in place, without touching the rest of the buffer.
func writeCiphertextSize(buf []byte, size uint64) {
	binary.LittleEndian.PutUint64(buf[15:23], size)
}

func writePlaintextSize(buf []byte, size uint64) {
	binary.LittleEndian.PutUint64(buf[7:15], size)
}
