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

// Package mempool implements a bounded, multi-bucket, garbage-collected
// allocator for the high-churn request and chunk objects moving through the
// RPC dispatcher and the encrypted-file cache.
package mempool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sabouaram/vaultrpc/duration"
	"github.com/sabouaram/vaultrpc/size"
)

// Config tunes bucket growth and the idle garbage-collection pass.
type Config struct {
	InitialCells    int
	MaxBucketSize   size.Size
	GCInterval      duration.Duration
	DropBucketDelay duration.Duration
}

func DefaultConfig() Config {
	return Config{
		InitialCells:    64,
		MaxBucketSize:   size.SizeMega,
		GCInterval:      duration.Seconds(15),
		DropBucketDelay: duration.Seconds(60),
	}
}

type cell struct {
	buf  []byte
	next *cell
}

type bucket struct {
	mu        sync.Mutex
	cellSize  int
	cellCount int
	free      *cell
	inUse     int32
	emptySince time.Time
}

func newBucket(cellSize, cellCount int) *bucket {
	b := &bucket{cellSize: cellSize, cellCount: cellCount}
	for i := 0; i < cellCount; i++ {
		b.free = &cell{buf: make([]byte, cellSize), next: b.free}
	}
	return b
}

func (b *bucket) allocate() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.free == nil {
		return nil
	}

	c := b.free
	b.free = c.next
	atomic.AddInt32(&b.inUse, 1)
	b.emptySince = time.Time{}
	return c.buf[:0]
}

func (b *bucket) deallocate(buf []byte) bool {
	if cap(buf) != b.cellSize {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.free = &cell{buf: buf[:b.cellSize], next: b.free}
	if atomic.AddInt32(&b.inUse, -1) == 0 {
		b.emptySince = time.Now()
	}
	return true
}

func (b *bucket) empty() bool {
	return atomic.LoadInt32(&b.inUse) == 0
}

// Pool is a multi-bucket allocator: one bucket chain per distinct object
// size, each chain growing geometrically and garbage-collected on an
// interval.
type Pool struct {
	cfg     Config
	mu      sync.Mutex
	buckets map[int][]*bucket
	closed  chan struct{}
	once    sync.Once
}

func New(cfg Config) *Pool {
	if cfg.InitialCells <= 0 {
		cfg = DefaultConfig()
	}

	p := &Pool{
		cfg:     cfg,
		buckets: make(map[int][]*bucket),
		closed:  make(chan struct{}),
	}
	go p.gcLoop()
	return p
}

// Allocate returns a zero-length slice backed by a cell sized to at least
// bytes, aligned up to the nearest power of two boundary the pool tracks.
func (p *Pool) Allocate(bytes int, align int) []byte {
	size := alignUp(bytes, align)

	p.mu.Lock()
	chain := p.buckets[size]

	for _, b := range chain {
		if buf := b.allocate(); buf != nil {
			p.mu.Unlock()
			return buf
		}
	}

	cellCount := p.cfg.InitialCells
	if len(chain) > 0 {
		cellCount = chain[len(chain)-1].cellCount * 2
	}
	if maxCells := int(p.cfg.MaxBucketSize) / size; maxCells > 0 && cellCount > maxCells {
		cellCount = maxCells
	}
	if cellCount <= 0 {
		cellCount = 1
	}

	nb := newBucket(size, cellCount)
	p.buckets[size] = append(chain, nb)
	p.mu.Unlock()

	return nb.allocate()
}

// Deallocate returns buf to the bucket chain matching its capacity.
func (p *Pool) Deallocate(buf []byte) {
	if cap(buf) == 0 {
		return
	}

	p.mu.Lock()
	chain := p.buckets[cap(buf)]
	p.mu.Unlock()

	for _, b := range chain {
		if b.deallocate(buf) {
			return
		}
	}
}

func alignUp(bytes, align int) int {
	if align <= 1 {
		return bytes
	}
	return (bytes + align - 1) / align * align
}

// Close stops the background GC loop. Buckets remain usable afterwards;
// they simply stop being reclaimed.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.closed) })
}

func (p *Pool) gcLoop() {
	t := time.NewTicker(p.cfg.GCInterval.Time())
	defer t.Stop()

	for {
		select {
		case <-p.closed:
			return
		case <-t.C:
			p.collect()
		}
	}
}

// collect drops buckets that have been empty for longer than
// DropBucketDelay, unless their cell count is at least half the configured
// InitialCells (those are kept warm and reused preferentially).
func (p *Pool) collect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	half := p.cfg.InitialCells / 2
	now := time.Now()

	for sz, chain := range p.buckets {
		kept := chain[:0]
		for _, b := range chain {
			if b.empty() && !b.emptySince.IsZero() && now.Sub(b.emptySince) > p.cfg.DropBucketDelay.Time() && b.cellCount < half {
				continue
			}
			kept = append(kept, b)
		}
		p.buckets[sz] = kept
	}
}
