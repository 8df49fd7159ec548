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

package acl

import (
	"context"
	"time"

	libcch "github.com/sabouaram/vaultrpc/cache"
)

// ttlCache adapts the generic expiring cache to the evaluator's Cache
// contract. Only Grant outcomes are ever stored (see Evaluator.cacheGrant),
// so a hit here is always definitive.
type ttlCache struct {
	c libcch.Cache[string, Decision]
}

// NewTTLCache builds a decision cache with a fixed per-entry expiration.
func NewTTLCache(ctx context.Context, ttl time.Duration) Cache {
	return &ttlCache{c: libcch.New[string, Decision](ctx, ttl)}
}

func (t *ttlCache) Find(_ context.Context, fingerprint string) (Decision, bool) {
	d, _, ok := t.c.Load(fingerprint)
	if !ok {
		return Unknown, false
	}
	return d, true
}

func (t *ttlCache) Set(_ context.Context, fingerprint string, d Decision) {
	t.c.Store(fingerprint, d)
}
