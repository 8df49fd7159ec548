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

import "strings"

func clean(s string) string {
	s = strings.TrimSpace(s)

	for {
		if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`')) {
			s = s[1 : len(s)-1]
			continue
		}
		break
	}

	return strings.TrimSpace(s)
}

// Parse resolves a protocol name, case-insensitively and tolerant of
// surrounding quotes, to a NetworkProtocol. Unknown input yields NetworkEmpty.
func Parse(s string) NetworkProtocol {
	s = strings.ToLower(clean(s))
	if s == "" {
		return NetworkEmpty
	}

	if p, ok := byName[s]; ok {
		return p
	}

	return NetworkEmpty
}

// ParseBytes is the []byte variant of Parse.
func ParseBytes(b []byte) NetworkProtocol {
	if len(b) == 0 {
		return NetworkEmpty
	}
	return Parse(string(b))
}

// ParseInt64 maps the exact numeric protocol codes (matching the
// NetworkProtocol constant values) back to a NetworkProtocol. Any value
// outside the known range, including negatives, yields NetworkEmpty.
func ParseInt64(i int64) NetworkProtocol {
	if i < 0 || i > int64(NetworkUnixGram) {
		return NetworkEmpty
	}

	p := NetworkProtocol(i)
	if _, ok := names[p]; !ok && p != NetworkEmpty {
		return NetworkEmpty
	}

	return p
}
