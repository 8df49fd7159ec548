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

// Package network gathers small numeric and statistic helpers shared by the
// socket transport and RPC dispatcher: byte counters, throughput stats and
// CLI-style flag lookups.
package network

import (
	"fmt"
	"strconv"
)

// Bytes is a raw byte counter, e.g. bytes read/written on a connection.
type Bytes uint64

func (b Bytes) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

// AsNumber converts the counter to a Number.
func (b Bytes) AsNumber() Number {
	return Number(b)
}

func (b Bytes) AsUint64() uint64 {
	return uint64(b)
}

func (b Bytes) AsFloat64() float64 {
	return float64(b)
}

var byteUnits = []struct {
	pow  uint
	code string
}{
	{60, "EB"},
	{50, "PB"},
	{40, "TB"},
	{30, "GB"},
	{20, "MB"},
	{10, "KB"},
}

// FormatUnitInt renders the byte count with a binary unit suffix, padding
// the numeric part to four characters, e.g. "  10 MB".
func (b Bytes) FormatUnitInt() string {
	for _, u := range byteUnits {
		threshold := uint64(1) << u.pow
		if uint64(b) >= threshold {
			v := uint64(b) >> u.pow
			return fmt.Sprintf("%4d %s", v, u.code)
		}
	}
	return fmt.Sprintf("%4d", uint64(b))
}

// Number is a signed numeric value used for deltas and rates.
type Number int64

func (n Number) String() string {
	return strconv.FormatInt(int64(n), 10)
}

func (n Number) AsBytes() Bytes {
	if n < 0 {
		return 0
	}
	return Bytes(n)
}
