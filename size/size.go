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

// Package size provides a binary byte-size type used to express chunk
// widths, cache budgets and pool bucket sizes across the module.
package size

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a count of bytes, formatted using binary (1024-based) units.
type Size uint64

const (
	SizeUnit Size = 1
	SizeKilo      = SizeUnit * 1024
	SizeMega      = SizeKilo * 1024
	SizeGiga      = SizeMega * 1024
	SizeTera      = SizeGiga * 1024
	SizePeta      = SizeTera * 1024
	SizeExa       = SizePeta * 1024
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

var units = []struct {
	size Size
	code string
}{
	{SizeExa, "EB"},
	{SizePeta, "PB"},
	{SizeTera, "TB"},
	{SizeGiga, "GB"},
	{SizeMega, "MB"},
	{SizeKilo, "KB"},
}

// Unit returns the largest binary unit that divides the size, or "" for
// values below one kilobyte.
func (s Size) Unit() string {
	for _, u := range units {
		if s >= u.size {
			return u.code
		}
	}
	return ""
}

// Code is an alias of Unit, for symmetry with other enum-like types.
func (s Size) Code() string {
	return s.Unit()
}

// Format renders the size using the given printf rounding pattern
// (FormatRound0..FormatRound3), suffixed with its unit when one applies.
func (s Size) Format(round string) string {
	for _, u := range units {
		if s >= u.size {
			v := float64(s) / float64(u.size)
			return fmt.Sprintf(round, v) + " " + u.code
		}
	}
	return fmt.Sprintf(round, float64(s))
}

// String renders the size with two decimals of precision, padded to four
// digits before the decimal point, e.g. "1.00 KB".
func (s Size) String() string {
	for _, u := range units {
		if s >= u.size {
			v := float64(s) / float64(u.size)
			return fmt.Sprintf("%4.2f %s", v, u.code)
		}
	}
	return strconv.FormatUint(uint64(s), 10)
}

// ParseSize parses a human size string such as "512", "1.5KB" or "2.5 GB".
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size: empty value")
	}

	var mul Size = SizeUnit
	up := strings.ToUpper(s)

	for _, u := range units {
		if strings.HasSuffix(up, u.code) {
			mul = u.size
			s = strings.TrimSpace(s[:len(s)-len(u.code)])
			break
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("size: invalid value %q: %w", s, err)
	}

	return Size(f * float64(mul)), nil
}

// Parse is an alias of ParseSize kept for call-site brevity.
func Parse(s string) (Size, error) {
	return ParseSize(s)
}
