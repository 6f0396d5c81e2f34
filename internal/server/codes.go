// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DefaultResetCodeTTL is how long a reset code stays valid.
const DefaultResetCodeTTL = 5 * time.Minute

// CodeStatus is the outcome of checking a reset code.
type CodeStatus int

const (
	CodeValid CodeStatus = iota
	CodeInvalid
	CodeExpired
)

// CodeIssuer creates 6-digit reset codes. Each reset gets its own TOTP
// secret; the code is the TOTP value at issue time, so it is checked
// against the issue time and expires by ExpiresAt.
type CodeIssuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewCodeIssuer creates an issuer whose codes last ttl.
func NewCodeIssuer(ttl time.Duration) *CodeIssuer {
	if ttl <= 0 {
		ttl = DefaultResetCodeTTL
	}
	return &CodeIssuer{ttl: ttl, now: time.Now}
}

func (c *CodeIssuer) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(c.ttl / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Issue creates a token and its code for email.
func (c *CodeIssuer) Issue(email string) (ResetToken, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "chatterm",
		AccountName: email,
		Period:      uint(c.ttl / time.Second),
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return ResetToken{}, "", fmt.Errorf("generate reset secret: %w", err)
	}

	now := c.now()
	code, err := totp.GenerateCodeCustom(key.Secret(), now, c.opts())
	if err != nil {
		return ResetToken{}, "", fmt.Errorf("generate reset code: %w", err)
	}
	token := ResetToken{
		Email:     email,
		Secret:    key.Secret(),
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	return token, code, nil
}

// Check compares code with token.
func (c *CodeIssuer) Check(token ResetToken, code string) CodeStatus {
	if c.now().After(token.ExpiresAt) {
		return CodeExpired
	}
	ok, err := totp.ValidateCustom(code, token.Secret, token.IssuedAt, c.opts())
	if err != nil || !ok {
		return CodeInvalid
	}
	return CodeValid
}
