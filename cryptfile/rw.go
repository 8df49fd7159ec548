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

package cryptfile

import (
	"io"

	"github.com/sabouaram/vaultrpc/cryptchunk"
	"github.com/sabouaram/vaultrpc/errors"
)

func (f *File) packedWidth(seqnum uint32) int64 {
	return int64(f.windowSize(seqnum) + cryptchunk.MaxExtraSize(f.desc.Suite))
}

// posToSeqnum locates the chunk owning plaintext offset p.
func (f *File) posToSeqnum(p int64) uint32 {
	first := int64(f.windowSize(0))
	if p < first {
		return 0
	}
	return uint32(1 + (p-first)/int64(f.windowSize(1)))
}

func (f *File) chunkBeginForPos(p int64) int64 {
	s := f.posToSeqnum(p)
	if s == 0 {
		return 0
	}
	return int64(f.windowSize(0)) + int64(s-1)*int64(f.windowSize(1))
}

func (f *File) chunkOffsetForPos(p int64) int {
	return int(p - f.chunkBeginForPos(p))
}

func (f *File) seqnumToRawPos(s uint32) int64 {
	pos := f.dataOffset
	for i := uint32(0); i < s; i++ {
		pos += f.packedWidth(i)
	}
	return pos
}

// loadChunk returns the decoded chunk owning seqnum, fetching and decoding
// it from disk on a cache miss.
func (f *File) loadChunk(seqnum uint32) (*cachedChunk, errors.Error) {
	if c, ok := f.cache.Get(seqnum); ok {
		return c, nil
	}

	rawOff := f.seqnumToRawPos(seqnum)
	packed := make([]byte, f.packedWidth(seqnum))

	n, err := f.fh.ReadAt(packed, rawOff)
	if err != nil && err != io.EOF {
		return nil, errors.FileReadFailure.Error(err)
	}
	packed = packed[:n]

	plaintext, ers := cryptchunk.Decode(f.desc.Suite, f.masterKey, f.desc.Salt, seqnum, packed)
	if ers != nil {
		return nil, ers
	}

	c := &cachedChunk{
		seqnum:  seqnum,
		rawOff:  rawOff,
		cipherN: n,
		data:    plaintext,
	}
	f.cache.Add(seqnum, c)
	return c, nil
}

// newChunk creates an empty in-cache chunk for a write past current EOF.
func (f *File) newChunk(seqnum uint32) *cachedChunk {
	c := &cachedChunk{
		seqnum: seqnum,
		dirty:  true,
		rawOff: f.seqnumToRawPos(seqnum),
		data:   make([]byte, 0, f.windowSize(seqnum)),
	}
	f.cache.Add(seqnum, c)
	return c
}

func (f *File) flushChunk(c *cachedChunk) errors.Error {
	encoded, ers := cryptchunk.Encode(f.desc.Suite, f.masterKey, f.desc.Salt, c.seqnum, c.data, f.windowSize(c.seqnum))
	if ers != nil {
		return ers
	}

	if _, err := f.fh.WriteAt(encoded, c.rawOff); err != nil {
		return errors.FileWriteFailure.Error(err)
	}

	c.dirty = false
	c.cipherN = len(encoded)
	return nil
}

// Seek repositions the plaintext cursor. Negative positions are rejected.
func (f *File) Seek(pos int64) errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return errors.FileNotOpen.Error()
	}
	if pos < 0 {
		return errors.FileSeekOutOfRange.Error()
	}

	f.cursor = pos
	return nil
}

func (f *File) Pos() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

func (f *File) Size() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plaintextSize
}

func (f *File) UsedSize() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ciphertextSize
}

// Read fills buf (up to maxSize bytes) starting at the current cursor.
func (f *File) Read(buf []byte, maxSize int) (int, errors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return 0, errors.FileNotOpen.Error()
	}

	remaining := maxSize
	if remaining > len(buf) {
		remaining = len(buf)
	}
	if int64(remaining) > f.plaintextSize-f.cursor {
		remaining = int(f.plaintextSize - f.cursor)
	}
	if remaining <= 0 {
		return 0, nil
	}

	written := 0
	for remaining > 0 {
		seqnum := f.posToSeqnum(f.cursor)
		c, ers := f.loadChunk(seqnum)
		if ers != nil {
			return written, ers
		}

		off := f.chunkOffsetForPos(f.cursor)
		if off > len(c.data) {
			break
		}

		n := copy(buf[written:written+remaining], c.data[off:])
		if n == 0 {
			break
		}

		written += n
		remaining -= n
		f.cursor += int64(n)
	}

	return written, nil
}

// Write overwrites size bytes of buf starting at the current cursor,
// extending the logical size when writing past the previous EOF.
func (f *File) Write(buf []byte, size int) (int, errors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return 0, errors.FileNotOpen.Error()
	}

	remaining := size
	if remaining > len(buf) {
		remaining = len(buf)
	}

	written := 0
	for remaining > 0 {
		seqnum := f.posToSeqnum(f.cursor)

		c, ok := f.cache.Get(seqnum)
		if !ok {
			if f.cursor >= f.plaintextSize {
				c = f.newChunk(seqnum)
			} else {
				var ers errors.Error
				c, ers = f.loadChunk(seqnum)
				if ers != nil {
					return written, ers
				}
			}
		}

		off := f.chunkOffsetForPos(f.cursor)
		window := f.windowSize(seqnum)

		if off+remaining > window {
			n := window - off
			f.applyWrite(c, off, buf[written:written+n])
			written += n
			remaining -= n
			f.cursor += int64(n)
		} else {
			f.applyWrite(c, off, buf[written:written+remaining])
			written += remaining
			f.cursor += int64(remaining)
			remaining = 0
		}

		c.dirty = true
		f.cache.Add(seqnum, c)

		if f.cursor > f.plaintextSize {
			f.plaintextSize = f.cursor
			f.headerDirty = true
		}
	}

	if f.plaintextSize > 0 {
		f.eofSeqnum = f.posToSeqnum(f.plaintextSize - 1)
	}

	return written, nil
}

func (f *File) applyWrite(c *cachedChunk, off int, src []byte) {
	need := off + len(src)
	if need > len(c.data) {
		grown := make([]byte, need)
		copy(grown, c.data)
		c.data = grown
	}
	copy(c.data[off:], src)
}

// Flush encodes and writes every dirty chunk in ascending sequence order,
// then refreshes the on-disk header fields.
func (f *File) Flush(deep bool) errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushLocked(deep)
}

func (f *File) flushLocked(deep bool) errors.Error {
	if !f.open {
		return errors.FileNotOpen.Error()
	}

	seqnums := f.cache.Keys()
	dirty := make([]uint32, 0, len(seqnums))
	for _, s := range seqnums {
		if c, ok := f.cache.Peek(s); ok && c.dirty {
			dirty = append(dirty, s)
		}
	}

	sortUint32(dirty)

	for _, s := range dirty {
		c, _ := f.cache.Peek(s)
		if ers := f.flushChunk(c); ers != nil {
			return ers
		}
	}

	if f.headerDirty {
		if err := f.writeHeaderSizes(); err != nil {
			return err
		}
		f.headerDirty = false
	}

	if deep {
		if err := f.fh.Sync(); err != nil {
			return errors.FileWriteFailure.Error(err)
		}
	}

	return nil
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func (f *File) writeHeaderSizes() errors.Error {
	f.ciphertextSize = f.seqnumToRawPos(f.eofSeqnum+1) - f.dataOffset

	// patch only the two size fields of the live header on disk.
	sizes := make([]byte, 16)
	putUint64LE(sizes[0:8], uint64(f.plaintextSize))
	putUint64LE(sizes[8:16], uint64(f.ciphertextSize))

	if _, err := f.fh.WriteAt(sizes, 7); err != nil {
		return errors.FileWriteFailure.Error(err)
	}
	return nil
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Sync flushes dirty chunks and fsyncs the underlying file.
func (f *File) Sync() errors.Error {
	return f.Flush(true)
}

// Fsync is an alias of Sync kept for symmetry with the original surface.
func (f *File) Fsync() errors.Error {
	return f.Sync()
}

// InvalidateCache drops every cached chunk without flushing dirty ones.
func (f *File) InvalidateCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache.Purge()
}

// Close flushes pending writes and releases the underlying descriptor.
func (f *File) Close() errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return errors.FileNotOpen.Error()
	}

	ferr := f.flushLocked(true)
	cerr := f.fh.Close()
	f.open = false

	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return errors.FileWriteFailure.Error(cerr)
	}
	return nil
}

func (f *File) Mode() Mode {
	return f.mode
}

func (f *File) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}
