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

import "encoding/json"

// MarshalJSON encodes the protocol as its lowercase JSON string form.
// NetworkEmpty marshals to an empty string, never null.
func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// MarshalText implements encoding.TextMarshaler.
func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// MarshalYAML implements yaml.Marshaler, returning a plain Go string so the
// emitted document uses idiomatic unquoted scalars.
func (n NetworkProtocol) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

// MarshalTOML implements the toml.Marshaler contract used by BurntSushi/toml
// and pelletier/go-toml, returning a quoted TOML string.
func (n NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte(`"` + n.String() + `"`), nil
}

// MarshalCBOR encodes the protocol as a CBOR text string.
func (n NetworkProtocol) MarshalCBOR() ([]byte, error) {
	s := n.String()
	if len(s) > 23 {
		return nil, ErrCBOREncode
	}

	out := make([]byte, 0, len(s)+1)
	out = append(out, byte(0x60)|byte(len(s)))
	out = append(out, s...)
	return out, nil
}
