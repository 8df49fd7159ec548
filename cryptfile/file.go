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
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sabouaram/vaultrpc/cryptchunk"
	"github.com/sabouaram/vaultrpc/cryptcontainer"
	"github.com/sabouaram/vaultrpc/errors"
	"github.com/sabouaram/vaultrpc/file/perm"
)

const DefaultCacheCapacity = 8

// DefaultPerm is the file mode used when Open creates a new container.
const DefaultPerm perm.Perm = 0o600

// DefaultMaxProcessingSize is the block size used when digesting or MAC'ing
// whole-file content during a stamp pass.
const DefaultMaxProcessingSize = 1 << 20

type cachedChunk struct {
	seqnum  uint32
	dirty   bool
	rawOff  int64
	cipherN int
	data    []byte
}

// File is a seekable, random-access view over one cryptcontainer.
type File struct {
	mu sync.Mutex

	path string
	mode Mode
	fh   *os.File
	open bool

	masterKey []byte
	desc      cryptcontainer.Descriptor

	dataOffset     int64
	ciphertextSize int64
	plaintextSize  int64
	headerDirty    bool

	cursor int64

	cache       *lru.Cache[uint32, *cachedChunk]
	cacheEvicts []*cachedChunk

	eofSeqnum          uint32
	maxProcessingSize  int
}

// Open opens path under mode, deriving chunk keys from masterKey against
// desc. ModeWriteNew creates (or truncates) and writes a fresh header and
// descriptor; the other modes read an existing header.
func Open(path string, mode Mode, masterKey []byte, desc cryptcontainer.Descriptor) (*File, errors.Error) {
	f := &File{
		path:              path,
		mode:              mode,
		masterKey:         masterKey,
		desc:              desc,
		maxProcessingSize: DefaultMaxProcessingSize,
	}

	fh, err := os.OpenFile(path, mode.osFlags(), os.FileMode(DefaultPerm))
	if err != nil {
		return nil, errors.FileReadFailure.Error(err)
	}
	f.fh = fh

	cap := DefaultCacheCapacity
	if mode == ModeScan {
		cap = 1
	}
	c, lerr := lru.NewWithEvict[uint32, *cachedChunk](cap, f.onEvict)
	if lerr != nil {
		return nil, errors.FileReadFailure.Error(lerr)
	}
	f.cache = c

	if mode == ModeWriteNew {
		if err := f.writeFreshHeader(); err != nil {
			_ = fh.Close()
			return nil, err
		}
	} else {
		if err := f.readHeader(); err != nil {
			_ = fh.Close()
			return nil, err
		}
	}

	f.open = true
	return f, nil
}

func (f *File) writeFreshHeader() errors.Error {
	descBytes := cryptcontainer.EncodeDescriptor(f.desc)
	f.dataOffset = int64(cryptcontainer.HeaderSize + len(descBytes))

	buf := make([]byte, f.dataOffset)
	h := cryptcontainer.Header{Version: cryptcontainer.CurrentVersion, DescriptorSize: uint16(len(descBytes))}
	copy(buf[:cryptcontainer.HeaderSize], cryptcontainer.EncodeHeader(h))
	copy(buf[cryptcontainer.HeaderSize:], descBytes)

	if _, err := f.fh.WriteAt(buf, 0); err != nil {
		return errors.FileWriteFailure.Error(err)
	}

	f.ciphertextSize = 0
	f.plaintextSize = 0
	return nil
}

func (f *File) readHeader() errors.Error {
	hb := make([]byte, cryptcontainer.HeaderSize)
	if _, err := f.fh.ReadAt(hb, 0); err != nil {
		return errors.FileReadFailure.Error(err)
	}

	h, ers := cryptcontainer.DecodeHeader(hb)
	if ers != nil {
		return ers
	}

	db := make([]byte, h.DescriptorSize)
	if _, err := f.fh.ReadAt(db, int64(cryptcontainer.HeaderSize)); err != nil {
		return errors.FileReadFailure.Error(err)
	}

	d, ers := cryptcontainer.DecodeDescriptor(db)
	if ers != nil {
		return ers
	}

	f.desc = d
	f.dataOffset = int64(cryptcontainer.HeaderSize) + int64(h.DescriptorSize)
	f.ciphertextSize = int64(h.CiphertextSize)
	f.plaintextSize = int64(h.PlaintextSize)

	if f.plaintextSize > 0 {
		f.eofSeqnum = f.posToSeqnum(f.plaintextSize - 1)
	}

	return nil
}

func (f *File) windowSize(seqnum uint32) int {
	return f.desc.EffectiveWindow(int(seqnum))
}

// onEvict flushes a dirty chunk to disk when the LRU drops it, matching the
// "eviction of a dirty chunk re-encodes it" rule.
func (f *File) onEvict(_ uint32, c *cachedChunk) {
	if c.dirty {
		_ = f.flushChunk(c)
	}
}
