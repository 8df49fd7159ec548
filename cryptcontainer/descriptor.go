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

import (
	"encoding/binary"

	"github.com/sabouaram/vaultrpc/cryptchunk"
	"github.com/sabouaram/vaultrpc/errors"
)

// KDFType identifies the key-derivation scheme used to turn a master secret
// into the per-chunk keys (cryptchunk only implements HKDF today; the field
// exists so PBKDF-derived masters can be distinguished later).
type KDFType uint8

const (
	KDFHKDFSHA256 KDFType = iota
)

// descriptorFixedSize is the fixed-width prefix of an encoded Descriptor,
// before the variable-length salt.
const descriptorFixedSize = 14

// Descriptor is the self-describing record following the header: enough to
// decode every chunk that follows without external configuration.
type Descriptor struct {
	KDF               KDFType
	Salt              []byte
	ChunkMaxSize      uint32
	FirstChunkMaxSize uint32
	Suite             cryptchunk.Suite
	Streaming         bool
}

// effectiveWindow returns the plaintext window size for chunk seqnum i.
func (d Descriptor) effectiveWindow(seqnum int) int {
	if seqnum == 0 && d.FirstChunkMaxSize > 0 {
		return int(d.FirstChunkMaxSize)
	}
	if d.ChunkMaxSize > 0 {
		return int(d.ChunkMaxSize)
	}
	return int(d.FirstChunkMaxSize)
}

func (d Descriptor) encode() []byte {
	buf := make([]byte, descriptorFixedSize+len(d.Salt))

	buf[0] = byte(d.KDF)
	buf[1] = byte(d.Suite)
	if d.Streaming {
		buf[2] = 1
	}
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(d.Salt)))
	binary.LittleEndian.PutUint32(buf[6:10], d.ChunkMaxSize)
	binary.LittleEndian.PutUint32(buf[10:14], d.FirstChunkMaxSize)
	copy(buf[descriptorFixedSize:], d.Salt)

	return buf
}

func decodeDescriptor(buf []byte) (Descriptor, errors.Error) {
	if len(buf) < descriptorFixedSize {
		return Descriptor{}, errors.ContainerParseFailure.Error()
	}

	saltLen := int(binary.LittleEndian.Uint16(buf[4:6]))
	if len(buf) < descriptorFixedSize+saltLen {
		return Descriptor{}, errors.ContainerParseFailure.Error()
	}

	d := Descriptor{
		KDF:               KDFType(buf[0]),
		Suite:             cryptchunk.Suite(buf[1]),
		Streaming:         buf[2] == 1,
		ChunkMaxSize:      binary.LittleEndian.Uint32(buf[6:10]),
		FirstChunkMaxSize: binary.LittleEndian.Uint32(buf[10:14]),
	}

	if saltLen > 0 {
		d.Salt = append([]byte{}, buf[descriptorFixedSize:descriptorFixedSize+saltLen]...)
	}

	return d, nil
}
