/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package protocol

import (
	"encoding/json"
	"errors"
)

// ErrCBOREncode is returned when a protocol name cannot be represented as a
// CBOR short text string (more than 23 bytes, which none of the registered
// names ever reach).
var ErrCBOREncode = errors.New("protocol: name too long for CBOR short string")

type yamlNode interface {
	Decode(v interface{}) error
}

// UnmarshalJSON implements json.Unmarshaler, accepting a quoted protocol name.
func (n *NetworkProtocol) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s); err != nil {
			*n = ParseBytes(b)
			return nil
		}
	}

	*n = Parse(s)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NetworkProtocol) UnmarshalText(b []byte) error {
	*n = ParseBytes(b)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler (gopkg.in/yaml.v3 node style).
func (n *NetworkProtocol) UnmarshalYAML(node yamlNode) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	*n = Parse(s)
	return nil
}

// UnmarshalCBOR decodes a CBOR text string into a NetworkProtocol.
func (n *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	if len(b) == 0 {
		*n = NetworkEmpty
		return nil
	}

	major := b[0] >> 5
	if major != 3 {
		*n = ParseBytes(b)
		return nil
	}

	length := int(b[0] & 0x1F)
	if len(b) < 1+length {
		return errors.New("protocol: truncated CBOR string")
	}

	*n = Parse(string(b[1 : 1+length]))
	return nil
}
