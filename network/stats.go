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

package network

import (
	"fmt"
	"sort"
)

// Stat identifies a single counter tracked for a connection or RPC session.
type Stat uint8

const (
	StatBytesRead Stat = iota
	StatBytesWritten
	StatMessagesRead
	StatMessagesWritten
	StatErrors
	StatReconnects
)

var statLabels = map[Stat]string{
	StatBytesRead:       "bytes_read",
	StatBytesWritten:    "bytes_written",
	StatMessagesRead:    "messages_read",
	StatMessagesWritten: "messages_written",
	StatErrors:          "errors",
	StatReconnects:      "reconnects",
}

func (s Stat) String() string {
	return statLabels[s]
}

// FormatUnitInt renders v using the Bytes binary-unit formatting.
func (s Stat) FormatUnitInt(v uint64) string {
	return Bytes(v).FormatUnitInt()
}

// FormatUnitFloat renders v with one decimal and the matching binary unit.
func (s Stat) FormatUnitFloat(v float64) string {
	b := Bytes(uint64(v))
	for _, u := range byteUnits {
		threshold := float64(uint64(1) << u.pow)
		if v >= threshold {
			return fmt.Sprintf("%6.1f %s", v/threshold, u.code)
		}
	}
	return fmt.Sprintf("%6.1f", float64(b))
}

// FormatUnit picks the integer or float formatter depending on the value type.
func (s Stat) FormatUnit(v interface{}) string {
	switch x := v.(type) {
	case uint64:
		return s.FormatUnitInt(x)
	case int64:
		return s.FormatUnitInt(uint64(x))
	case float64:
		return s.FormatUnitFloat(x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatLabelUnit renders "<label>: <formatted value>".
func (s Stat) FormatLabelUnit(v interface{}) string {
	return fmt.Sprintf("%s: %s", s.String(), s.FormatUnit(v))
}

// FormatLabelUnitPadded is FormatLabelUnit with the label padded to width w.
func (s Stat) FormatLabelUnitPadded(v interface{}, w int) string {
	return fmt.Sprintf("%-*s: %s", w, s.String(), s.FormatUnit(v))
}

// ListStatsSort returns every known Stat sorted by label for deterministic display.
func ListStatsSort() []Stat {
	out := make([]Stat, 0, len(statLabels))
	for s := range statLabels {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
