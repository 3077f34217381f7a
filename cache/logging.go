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

import "github.com/sirupsen/logrus"

// Logging decorates a delegate Cache with trace-level hit/miss logging,
// carrying the owning namespace id as a field (SPEC_FULL.md §2's
// logrus.WithField convention, applied here to the cache decorator stack
// per spec.md §4.2).
type Logging struct {
	delegate Cache
	hits     int64
	requests int64
	log      *logrus.Entry
}

// NewLogging wraps delegate with request/hit-ratio trace logging.
func NewLogging(delegate Cache, logger *logrus.Logger) *Logging {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Logging{delegate: delegate, log: logger.WithField("cache", delegate.ID())}
}

// ID implements Cache.
func (l *Logging) ID() string { return l.delegate.ID() }

// PutObject implements Cache.
func (l *Logging) PutObject(key, value interface{}) {
	l.delegate.PutObject(key, value)
}

// GetObject implements Cache, tracking and logging the running hit ratio.
func (l *Logging) GetObject(key interface{}) (interface{}, bool) {
	l.requests++
	v, ok := l.delegate.GetObject(key)
	if ok {
		l.hits++
	}
	l.log.WithFields(logrus.Fields{
		"hit":      ok,
		"hits":     l.hits,
		"requests": l.requests,
		"hitRatio": float64(l.hits) / float64(l.requests),
	}).Trace("cache lookup")
	return v, ok
}

// RemoveObject implements Cache.
func (l *Logging) RemoveObject(key interface{}) (interface{}, bool) {
	return l.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (l *Logging) Clear() { l.delegate.Clear() }

// Size implements Cache.
func (l *Logging) Size() int { return l.delegate.Size() }
