// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the credential and randomness primitives of the site.
//
// # Architecture
//
// The content API issues the admin credential; this process never signs one.
// It only reads the credential's expiry so that the session can end exactly
// when the credential does, and verifies the signature when the API's public
// key is configured.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is returned when a credential cannot be parsed or fails verification.
var ErrInvalidCredential = errors.New("sec: invalid credential")

// Credential is what the site learns from a backend-issued token.
type Credential struct {
	Subject   string
	ExpiresAt time.Time

	// HasExpiry is false when the token carries no exp claim (or is not a JWT at all).
	HasExpiry bool
}

// CredentialInspector reads the registered claims of backend credentials.
type CredentialInspector struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewCredentialInspector creates an inspector that reads claims without verification.
func NewCredentialInspector() *CredentialInspector {
	return &CredentialInspector{parser: jwt.NewParser()}
}

// NewVerifyingInspector creates an inspector that requires a valid RS256 signature.
// It reads the PEM-encoded public key from the provided filesystem path.
func NewVerifyingInspector(publicKeyPath string) (*CredentialInspector, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewVerifyingInspectorFromKey(publicKey), nil
}

// NewVerifyingInspectorFromKey is [NewVerifyingInspector] for an already parsed key.
func NewVerifyingInspectorFromKey(publicKey *rsa.PublicKey) *CredentialInspector {
	return &CredentialInspector{
		publicKey: publicKey,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}
}

// Verifies reports whether signatures are checked.
func (inspector *CredentialInspector) Verifies() bool {
	return inspector.publicKey != nil
}

// Inspect extracts subject and expiry from token.
//
// Without a public key, an opaque (non-JWT) token is accepted and reported
// with HasExpiry=false so that the caller falls back to its default lifetime.
// With a public key, anything but a valid, unexpired RS256 token is rejected.
func (inspector *CredentialInspector) Inspect(token string) (Credential, error) {
	claims := &jwt.RegisteredClaims{}

	// 1. Verified path
	if inspector.publicKey != nil {
		parsed, err := inspector.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return inspector.publicKey, nil
		})
		if err != nil || !parsed.Valid {
			return Credential{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
		return credentialFrom(claims), nil
	}

	// 2. Unverified path: the backend stays the authority on every call
	if _, _, err := inspector.parser.ParseUnverified(token, claims); err != nil {
		return Credential{}, nil
	}

	credential := credentialFrom(claims)
	if credential.HasExpiry && !credential.ExpiresAt.After(time.Now()) {
		return Credential{}, fmt.Errorf("%w: token already expired", ErrInvalidCredential)
	}
	return credential, nil
}

// credentialFrom maps registered claims onto a [Credential].
func credentialFrom(claims *jwt.RegisteredClaims) Credential {
	credential := Credential{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		credential.ExpiresAt = claims.ExpiresAt.Time
		credential.HasExpiry = true
	}
	return credential
}
