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

import "strings"

// FindFlagInList reports whether flag is present in list, case-insensitively.
func FindFlagInList(flag string, list []string) bool {
	for _, f := range list {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// FindAllFlagInList reports whether every entry in flags is present in list.
func FindAllFlagInList(flags []string, list []string) bool {
	for _, f := range flags {
		if !FindFlagInList(f, list) {
			return false
		}
	}
	return true
}

func power2Unit(v uint64) (shift uint, ok bool) {
	for s := uint(60); s > 0; s -= 10 {
		if v >= uint64(1)<<s {
			return s, true
		}
	}
	return 0, false
}

func powerList() []uint {
	return []uint{60, 50, 40, 30, 20, 10}
}
