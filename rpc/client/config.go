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

package client

import (
	"github.com/spf13/viper"

	"github.com/sabouaram/vaultrpc/errors"
	"github.com/sabouaram/vaultrpc/rpc/pool"
)

// Config is the data-carrying, viper-bindable configuration of a
// Dispatcher. Unlike New's single scalar depth, MaxQueueDepth is
// per-priority, letting a deployment give Low or Lowest tighter
// backpressure than Normal/High without capping them all alike.
type Config struct {
	MaxQueueDepth map[pool.Priority]int `mapstructure:"max_queue_depth"`
}

// LoadConfig binds Config's fields out of v.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.ConfigInvalid.Error(err)
	}
	return cfg, nil
}

// NewFromConfig builds a Dispatcher with per-priority queue-depth limits.
// Priorities absent from cfg.MaxQueueDepth fall back to defaultDepth.
func NewFromConfig(p *pool.Pool, cfg Config, defaultDepth int) *Dispatcher {
	d := New(p, defaultDepth)
	if len(cfg.MaxQueueDepth) == 0 {
		return d
	}
	d.mu.Lock()
	d.perPriorityDepth = make(map[pool.Priority]int, len(cfg.MaxQueueDepth))
	for pr, depth := range cfg.MaxQueueDepth {
		d.perPriorityDepth[pr] = depth
	}
	d.mu.Unlock()
	return d
}
