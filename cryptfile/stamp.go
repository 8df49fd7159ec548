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
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"io"
	"os"

	"github.com/sabouaram/vaultrpc/errors"
)

// stampMagic marks a trailing stamp record so a later scan can recognize
// and strip it before treating the bytes that follow dataOffset+ciphertext
// as further chunk payload.
var stampMagic = [4]byte{'N', 'G', 'S', '1'}

const (
	stampKindDigest byte = 1
	stampKindMAC    byte = 2
)

// stampRecord is the fixed trailing layout: magic, kind, payload length,
// payload (sha256 digest or hmac-sha256 tag, both 32 bytes).
type stampRecord struct {
	kind byte
	sum  []byte
}

func (s stampRecord) encode() []byte {
	buf := make([]byte, 0, 4+1+2+len(s.sum))
	buf = append(buf, stampMagic[:]...)
	buf = append(buf, s.kind)
	buf = append(buf, byte(len(s.sum)), byte(len(s.sum)>>8))
	buf = append(buf, s.sum...)
	return buf
}

func decodeStamp(buf []byte) (stampRecord, bool) {
	if len(buf) < 7 || !bytes.Equal(buf[0:4], stampMagic[:]) {
		return stampRecord{}, false
	}
	n := int(buf[5]) | int(buf[6])<<8
	if len(buf) < 7+n {
		return stampRecord{}, false
	}
	return stampRecord{kind: buf[4], sum: buf[7 : 7+n]}, true
}

// eofRawPos is the raw file offset one past the last ciphertext byte,
// i.e. where a stamp record is appended or read back from.
func (f *File) eofRawPos() int64 {
	return f.dataOffset + f.ciphertextSize
}

func (f *File) hashContent(h hash.Hash) errors.Error {
	buf := make([]byte, f.maxProcessingSize)
	var off int64

	for off < f.eofRawPos() {
		n, err := f.fh.ReadAt(buf, off)
		if n > 0 {
			h.Write(buf[:n])
			off += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.FileReadFailure.Error(err)
		}
	}

	return nil
}

// StampDigest computes a SHA-256 digest over header||descriptor||ciphertext
// and appends it as a trailing stamp record.
func (f *File) StampDigest() errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.flushLocked(true); err != nil {
		return err
	}

	h := sha256.New()
	if err := f.hashContent(h); err != nil {
		return err
	}

	rec := stampRecord{kind: stampKindDigest, sum: h.Sum(nil)}
	if _, err := f.fh.WriteAt(rec.encode(), f.eofRawPos()); err != nil {
		return errors.FileWriteFailure.Error(err)
	}
	return nil
}

// StampMAC computes an HMAC-SHA256 tag over header||descriptor||ciphertext,
// keyed with the file's master key, and appends it as a trailing stamp record.
func (f *File) StampMAC() errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.flushLocked(true); err != nil {
		return err
	}

	h := hmac.New(sha256.New, f.masterKey)
	if err := f.hashContent(h); err != nil {
		return err
	}

	rec := stampRecord{kind: stampKindMAC, sum: h.Sum(nil)}
	if _, err := f.fh.WriteAt(rec.encode(), f.eofRawPos()); err != nil {
		return errors.FileWriteFailure.Error(err)
	}
	return nil
}

func (f *File) readTrailingStamp(wantKind byte) (stampRecord, errors.Error) {
	info, err := f.fh.Stat()
	if err != nil {
		return stampRecord{}, errors.FileReadFailure.Error(err)
	}

	tail := info.Size() - f.eofRawPos()
	if tail < 7 {
		return stampRecord{}, errors.StampMissing.Error()
	}

	buf := make([]byte, tail)
	if _, err := f.fh.ReadAt(buf, f.eofRawPos()); err != nil {
		return stampRecord{}, errors.FileReadFailure.Error(err)
	}

	rec, ok := decodeStamp(buf)
	if !ok || rec.kind != wantKind {
		return stampRecord{}, errors.StampMissing.Error()
	}
	return rec, nil
}

// CheckStampDigest recomputes the content digest and compares it against the
// trailing digest stamp, succeeding iff no byte of header||descriptor||
// ciphertext has changed since StampDigest.
func (f *File) CheckStampDigest() (bool, errors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.readTrailingStamp(stampKindDigest)
	if err != nil {
		return false, err
	}

	h := sha256.New()
	if err := f.hashContent(h); err != nil {
		return false, err
	}

	return hmac.Equal(h.Sum(nil), rec.sum), nil
}

// VerifyStampMAC recomputes the content MAC and compares it against the
// trailing MAC stamp in constant time.
func (f *File) VerifyStampMAC() (bool, errors.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.readTrailingStamp(stampKindMAC)
	if err != nil {
		return false, err
	}

	h := hmac.New(sha256.New, f.masterKey)
	if err := f.hashContent(h); err != nil {
		return false, err
	}

	return hmac.Equal(h.Sum(nil), rec.sum), nil
}

// Truncate shrinks or extends the logical file to newSize. Chunks fully
// beyond newSize are dropped from cache and disk; the chunk that now
// straddles the new boundary is re-encoded with its plaintext trimmed.
// When backupCopy is true the whole file is copied aside first and
// restored if any step below fails.
func (f *File) Truncate(newSize int64, backupCopy bool) errors.Error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return errors.FileNotOpen.Error()
	}
	if newSize < 0 {
		return errors.FileSeekOutOfRange.Error()
	}

	var backupPath string
	if backupCopy {
		var err errors.Error
		backupPath, err = f.copyAside()
		if err != nil {
			return err
		}
	}

	if err := f.truncateLocked(newSize); err != nil {
		if backupCopy {
			f.restoreFrom(backupPath)
		}
		return err
	}

	if backupCopy {
		_ = os.Remove(backupPath)
	}
	return nil
}

func (f *File) truncateLocked(newSize int64) errors.Error {
	if err := f.flushLocked(false); err != nil {
		return err
	}

	if newSize >= f.plaintextSize {
		f.plaintextSize = newSize
		f.headerDirty = true
		return f.flushLocked(true)
	}

	var lastSeqnum uint32
	if newSize > 0 {
		lastSeqnum = f.posToSeqnum(newSize - 1)
	}

	for s := lastSeqnum + 1; s <= f.eofSeqnum; s++ {
		f.cache.Remove(s)
	}

	if newSize > 0 {
		c, ers := f.loadChunk(lastSeqnum)
		if ers != nil {
			return ers
		}
		keep := int(newSize - f.chunkBeginForPos(newSize-1) - 1 + 1)
		if keep < len(c.data) {
			c.data = c.data[:keep]
		}
		c.dirty = true
		f.cache.Add(lastSeqnum, c)
	}

	f.plaintextSize = newSize
	f.eofSeqnum = lastSeqnum
	f.headerDirty = true

	rawCut := f.seqnumToRawPos(lastSeqnum + 1)
	if err := f.flushLocked(false); err != nil {
		return err
	}
	if err := f.fh.Truncate(rawCut); err != nil {
		return errors.FileWriteFailure.Error(err)
	}

	return f.flushLocked(true)
}

func (f *File) copyAside() (string, errors.Error) {
	backupPath := f.path + ".bak"

	src, err := os.Open(f.path)
	if err != nil {
		return "", errors.FileReadFailure.Error(err)
	}
	defer src.Close()

	dst, err := os.OpenFile(backupPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", errors.FileWriteFailure.Error(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.FileWriteFailure.Error(err)
	}
	return backupPath, nil
}

func (f *File) restoreFrom(backupPath string) {
	src, err := os.Open(backupPath)
	if err != nil {
		return
	}
	defer src.Close()

	_ = f.fh.Truncate(0)
	_, _ = f.fh.Seek(0, io.SeekStart)
	_, _ = io.Copy(f.fh, src)
	_ = os.Remove(backupPath)
}
