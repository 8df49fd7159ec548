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

// Package cryptchunk implements the AEAD chunk codec: per-chunk HKDF key
// derivation followed by authenticated encryption of one plaintext window.
package cryptchunk

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/sabouaram/vaultrpc/errors"
)

// Suite names the AEAD algorithm used to seal each chunk.
type Suite uint8

const (
	SuiteChaCha20Poly1305 Suite = iota
	SuiteAES256GCM
)

func (s Suite) aead(key []byte) (cipher.AEAD, errors.Error) {
	switch s {
	case SuiteAES256GCM:
		blk, err := aes.NewCipher(key)
		if err != nil {
			return nil, errors.CryptoBadKey.Error(err)
		}
		a, err := cipher.NewGCM(blk)
		if err != nil {
			return nil, errors.CryptoBadKey.Error(err)
		}
		return a, nil
	default:
		a, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, errors.CryptoBadKey.Error(err)
		}
		return a, nil
	}
}

// KeySize returns the master/derived key length expected by the suite.
func (s Suite) KeySize() int {
	switch s {
	case SuiteAES256GCM:
		return 32
	default:
		return chacha20poly1305.KeySize
	}
}

// IVSize returns the nonce length expected by the suite.
func (s Suite) IVSize() int {
	switch s {
	case SuiteAES256GCM:
		return 12
	default:
		return chacha20poly1305.NonceSize
	}
}

// deriveChunkKey derives a per-chunk key via HKDF-SHA256 from the master
// key, the container-wide salt, and an info value (the little-endian
// sequence number for sequence-numbered chunks, or a caller-supplied tag).
func deriveChunkKey(suite Suite, masterKey, salt, info []byte) ([]byte, errors.Error) {
	r := hkdf.New(sha256.New, masterKey, salt, info)
	key := make([]byte, suite.KeySize())
	if _, err := readFull(r, key); err != nil {
		return nil, errors.CryptoKDFMisconfigured.Error(err)
	}
	return key, nil
}
