// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the two visitor intents that reach the content API's
// auth endpoints: the admin login and the public feedback form.
//
// # Architecture
//
// The two intents never share a code path. A login turns a credential into a
// server-side session; a feedback submission is forwarded and forgotten, and
// whatever the API answers is never treated as a credential.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/sec"
	"github.com/taibuivan/scholar/internal/platform/validate"
)

// # Field Names

const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldMessage  = "message"
)

// MaxFeedbackLength bounds a visitor message.
const MaxFeedbackLength = 5000

// ErrUnusableCredential is returned when the API issues a credential that fails inspection.
var ErrUnusableCredential = apperr.Unauthorized("The server issued an invalid credential. Please try again.")

// Gateway is the subset of the content API client this package uses.
type Gateway interface {
	Login(ctx context.Context, email, password string) (string, error)
	SendFeedback(ctx context.Context, email, message string) error
}

// Service implements the login and feedback use cases.
type Service struct {
	gateway     Gateway
	inspector   *sec.CredentialInspector
	fallbackTTL time.Duration
}

// NewService wires the use cases. fallbackTTL applies to credentials without an exp claim.
func NewService(gateway Gateway, inspector *sec.CredentialInspector, fallbackTTL time.Duration) *Service {
	return &Service{gateway: gateway, inspector: inspector, fallbackTTL: fallbackTTL}
}

// LoginInput is the submitted login form.
type LoginInput struct {
	Email    string
	Password string
}

// Grant is a credential accepted for a session.
type Grant struct {
	Token     string
	Subject   string
	ExpiresAt time.Time
}

/*
Login exchanges credentials for a bearer token and derives its expiry.

Description: The expiry comes from the credential's exp claim when present,
otherwise from the configured fallback lifetime.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - Grant: Token and expiry
  - error: Validation failures, backend.ErrInvalidCredentials, ErrUnusableCredential
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (Grant, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return Grant{}, err
	}

	token, err := service.gateway.Login(ctx, input.Email, input.Password)
	if err != nil {
		return Grant{}, err
	}

	credential, err := service.inspector.Inspect(token)
	if err != nil {
		if errors.Is(err, sec.ErrInvalidCredential) {
			return Grant{}, ErrUnusableCredential
		}
		return Grant{}, err
	}

	grant := Grant{Token: token, Subject: credential.Subject, ExpiresAt: credential.ExpiresAt}
	if !credential.HasExpiry {
		grant.ExpiresAt = time.Now().Add(service.fallbackTTL)
	}
	return grant, nil
}

// FeedbackInput is the submitted feedback form.
type FeedbackInput struct {
	Email   string
	Message string
}

// SendFeedback validates and forwards a visitor message.
func (service *Service) SendFeedback(ctx context.Context, input FeedbackInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldMessage, input.Message).
		MaxLen(FieldMessage, input.Message, MaxFeedbackLength)
	if err := validator.Err(); err != nil {
		return err
	}

	return service.gateway.SendFeedback(ctx, input.Email, input.Message)
}
