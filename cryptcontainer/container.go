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
	"bytes"

	"github.com/sabouaram/vaultrpc/cryptchunk"
	"github.com/sabouaram/vaultrpc/errors"
)

// Pack encodes plaintext as a complete container: header, descriptor, then
// the chunk sequence produced by windowing plaintext per the descriptor's
// chunk-size fields.
func Pack(d Descriptor, masterKey, plaintext []byte) ([]byte, errors.Error) {
	descBytes := d.encode()

	out := bytes.NewBuffer(nil)
	out.Write(make([]byte, HeaderSize))
	out.Write(descBytes)

	seqnum := uint32(0)
	off := 0

	for off < len(plaintext) {
		window := d.effectiveWindow(int(seqnum))
		if window <= 0 {
			window = len(plaintext) - off
		}

		end := off + window
		if end > len(plaintext) {
			end = len(plaintext)
		}

		chunk, ers := cryptchunk.Encode(d.Suite, masterKey, d.Salt, seqnum, plaintext[off:end], d.effectiveWindow(int(seqnum)))
		if ers != nil {
			return nil, ers
		}

		out.Write(chunk)
		off = end
		seqnum++
	}

	buf := out.Bytes()
	h := Header{
		Version:        CurrentVersion,
		DescriptorSize: uint16(len(descBytes)),
		PlaintextSize:  uint64(len(plaintext)),
		CiphertextSize: uint64(len(buf) - HeaderSize - len(descBytes)),
	}
	copy(buf[:HeaderSize], h.encode())

	return buf, nil
}

// Unpack parses a container produced by Pack and returns its plaintext.
func Unpack(masterKey []byte, container []byte) ([]byte, errors.Error) {
	h, ers := decodeHeader(container)
	if ers != nil {
		return nil, ers
	}

	descStart := HeaderSize
	descEnd := descStart + int(h.DescriptorSize)
	if descEnd > len(container) {
		return nil, errors.ContainerInvalidSize.Error()
	}

	d, ers := decodeDescriptor(container[descStart:descEnd])
	if ers != nil {
		return nil, ers
	}

	chunkData := container[descEnd:]
	if uint64(len(chunkData)) < h.CiphertextSize {
		return nil, errors.ContainerInvalidSize.Error()
	}
	chunkData = chunkData[:h.CiphertextSize]

	out := bytes.NewBuffer(nil)
	seqnum := uint32(0)
	off := 0

	for off < len(chunkData) {
		plaintext, ers := cryptchunk.Decode(d.Suite, masterKey, d.Salt, seqnum, chunkData[off:])
		if ers != nil {
			return nil, ers
		}

		width := len(plaintext) + cryptchunk.MaxExtraSize(d.Suite)
		fullWidth := d.effectiveWindow(int(seqnum)) + cryptchunk.MaxExtraSize(d.Suite)
		if len(plaintext) == d.effectiveWindow(int(seqnum)) {
			width = fullWidth
		}
		if off+width > len(chunkData) {
			width = len(chunkData) - off
		}

		out.Write(plaintext)
		off += width
		seqnum++
	}

	if uint64(out.Len()) != h.PlaintextSize {
		return nil, errors.ContainerInvalidSize.Error()
	}

	return out.Bytes(), nil
}
