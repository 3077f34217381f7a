// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Scheduled decorates a delegate Cache with a flushInterval: the entire
// delegate is cleared whenever interval has elapsed since the last flush
// (spec.md §4.2 "Scheduled(interval)"). A patrickmn/go-cache instance
// with no per-entry payload, only a sentinel key whose own TTL equals
// interval, drives the flush check so no background goroutine or timer
// needs managing directly.
type Scheduled struct {
	delegate Cache
	interval time.Duration
	ticker   *gocache.Cache
}

const scheduledSentinelKey = "_tick"

// NewScheduled wraps delegate with a periodic full-clear every interval.
func NewScheduled(delegate Cache, interval time.Duration) *Scheduled {
	s := &Scheduled{
		delegate: delegate,
		interval: interval,
		ticker:   gocache.New(interval, interval),
	}
	s.ticker.SetDefault(scheduledSentinelKey, struct{}{})
	return s
}

func (s *Scheduled) checkFlush() {
	if _, found := s.ticker.Get(scheduledSentinelKey); !found {
		s.delegate.Clear()
		s.ticker.SetDefault(scheduledSentinelKey, struct{}{})
	}
}

// ID implements Cache.
func (s *Scheduled) ID() string { return s.delegate.ID() }

// PutObject implements Cache.
func (s *Scheduled) PutObject(key, value interface{}) {
	s.checkFlush()
	s.delegate.PutObject(key, value)
}

// GetObject implements Cache.
func (s *Scheduled) GetObject(key interface{}) (interface{}, bool) {
	s.checkFlush()
	return s.delegate.GetObject(key)
}

// RemoveObject implements Cache.
func (s *Scheduled) RemoveObject(key interface{}) (interface{}, bool) {
	s.checkFlush()
	return s.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (s *Scheduled) Clear() { s.delegate.Clear() }

// Size implements Cache.
func (s *Scheduled) Size() int {
	s.checkFlush()
	return s.delegate.Size()
}
