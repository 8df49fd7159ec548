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

package cryptchunk

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/sabouaram/vaultrpc/errors"
)

func readFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}

// MaxExtraSize is the fixed per-chunk overhead (length prefix + IV + tag)
// for a given suite, used by callers to compute the padded on-disk width of
// a full chunk.
func MaxExtraSize(s Suite) int {
	return 4 + s.IVSize() + 16
}

// infoFor builds the HKDF info parameter for seqnum-keyed chunks: the
// little-endian sequence number, 4 bytes wide. The first chunk's info is
// the zero value, per the codec's definition.
func infoFor(seqnum uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, seqnum)
	return b
}

// Encode seals plaintext as one on-disk chunk: [u32 length][iv][tag][ciphertext].
// When plaintext is exactly maxChunkSize bytes, the output is zero-padded to
// maxChunkSize+MaxExtraSize(suite) bytes so every full chunk has identical
// on-disk width.
func Encode(suite Suite, masterKey, salt []byte, seqnum uint32, plaintext []byte, maxChunkSize int) ([]byte, errors.Error) {
	return EncodeWithInfo(suite, masterKey, salt, infoFor(seqnum), plaintext, maxChunkSize)
}

// EncodeWithInfo is Encode with a caller-supplied HKDF info tag instead of a
// sequence number, for non-sequential chunk keying schemes.
func EncodeWithInfo(suite Suite, masterKey, salt, info, plaintext []byte, maxChunkSize int) ([]byte, errors.Error) {
	key, ers := deriveChunkKey(suite, masterKey, salt, info)
	if ers != nil {
		return nil, ers
	}

	aead, ers := suite.aead(key)
	if ers != nil {
		return nil, ers
	}

	iv := make([]byte, suite.IVSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.CryptoBadKey.Error(err)
	}

	authData := append(append([]byte{}, salt...), info...)

	out := make([]byte, 4+len(iv))
	copy(out[4:], iv)
	out = aead.Seal(out, iv, plaintext, authData)

	realLen := len(out) - 4
	binary.LittleEndian.PutUint32(out[:4], uint32(realLen))

	if len(plaintext) == maxChunkSize {
		padded := maxChunkSize + MaxExtraSize(suite)
		if len(out) < padded {
			out = append(out, make([]byte, padded-len(out))...)
		}
	}

	return out, nil
}

// Decode reverses Encode: buf may hold trailing padding beyond the encoded
// chunk's declared length.
func Decode(suite Suite, masterKey, salt []byte, seqnum uint32, buf []byte) ([]byte, errors.Error) {
	return DecodeWithInfo(suite, masterKey, salt, infoFor(seqnum), buf)
}

// DecodeWithInfo is Decode with an explicit HKDF info tag.
func DecodeWithInfo(suite Suite, masterKey, salt, info, buf []byte) ([]byte, errors.Error) {
	if len(buf) < 4 {
		return nil, errors.FramingHeaderTooShort.Error()
	}

	length := binary.LittleEndian.Uint32(buf[:4])
	if length == 0 {
		return nil, nil
	}
	if int(length) > len(buf)-4 {
		return nil, errors.FramingMalformedEnvelope.Error()
	}

	body := buf[4 : 4+int(length)]

	ivSize := suite.IVSize()
	if len(body) < ivSize {
		return nil, errors.CryptoIVMismatch.Error()
	}

	iv := body[:ivSize]
	ciphertext := body[ivSize:]

	key, ers := deriveChunkKey(suite, masterKey, salt, info)
	if ers != nil {
		return nil, ers
	}

	aead, ers := suite.aead(key)
	if ers != nil {
		return nil, ers
	}

	authData := append(append([]byte{}, salt...), info...)

	plaintext, err := aead.Open(nil, iv, ciphertext, authData)
	if err != nil {
		return nil, errors.CryptoTagVerifyFailed.Error(err)
	}

	return plaintext, nil
}
