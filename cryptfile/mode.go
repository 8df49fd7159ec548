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

// Package cryptfile implements a seekable, random-access view over a
// cryptcontainer, backed by a bounded LRU of decoded chunks.
package cryptfile

// Mode selects the open discipline, mirroring the capability set a caller
// needs: plain read, create-or-truncate, append, random read/write on an
// existing file, or a cache-free sequential scan tolerant of files another
// writer still has open.
type Mode uint8

const (
	ModeRead Mode = iota
	ModeWriteNew
	ModeWriteExisting
	ModeAppend
	ModeWriteOverwrite
	ModeScan
)

func (m Mode) osFlags() int {
	switch m {
	case ModeRead, ModeScan:
		return osReadOnly
	case ModeWriteNew:
		return osCreateTrunc
	case ModeWriteExisting, ModeWriteOverwrite:
		return osReadWrite
	case ModeAppend:
		return osAppend
	default:
		return osReadOnly
	}
}
