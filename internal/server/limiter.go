// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// EmailLimiter limits reset code requests per email address.
type EmailLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*rate.Limiter
}

// NewEmailLimiter allows perMin requests per minute for each email.
func NewEmailLimiter(perMin int) *EmailLimiter {
	if perMin < 1 {
		perMin = 1
	}
	return &EmailLimiter{perMin: perMin, limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether a request for email may proceed now.
func (l *EmailLimiter) Allow(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
