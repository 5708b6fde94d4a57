// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token issues and verifies edit tokens. Greetings have no owner
// accounts; whoever holds the token returned at creation may update the
// greeting.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim of every edit token.
	Issuer = "greetcards"

	// DefaultTTL is how long an edit token stays valid.
	DefaultTTL = 365 * 24 * time.Hour
)

var (
	ErrInvalid  = errors.New("invalid edit token")
	ErrMismatch = errors.New("edit token belongs to another greeting")
)

// Claims are the edit token claims. The subject is the greeting slug.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer signs and verifies HS256 edit tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. ttl <= 0 uses DefaultTTL.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("edit token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token granting edit access to slug.
func (s *Signer) Issue(slug string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   slug,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign edit token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and issuer of raw and that it was
// issued for slug.
func (s *Signer) Verify(raw, slug string) error {
	if raw == "" {
		return ErrInvalid
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.Subject != slug {
		return ErrMismatch
	}
	return nil
}
