// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Turbulence", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.Err() != nil)
		})
	}
}

/*
TestValidator_URL checks absolute links, rooted paths and the empty value.
*/
func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"https", "https://doi.org/10.1103/PhysRevE.1", true},
		{"http", "http://example.org/paper.pdf", true},
		{"rooted_path", "/uploads/cover.jpg", true},
		{"empty_is_optional", "", true},
		{"protocol_relative", "//evil.example", false},
		{"javascript", "javascript:alert(1)", false},
		{"bare_word", "cover.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.URL("link", tt.value)
			assert.Equal(t, !tt.isValid, v.Err() != nil)
		})
	}
}

/*
TestValidator_Number checks integer parsing for year fields.
*/
func TestValidator_Number(t *testing.T) {
	v := &validate.Validator{}
	v.Number("year", "2021").Number("year", "").Number("year", " 1999 ")
	assert.NoError(t, v.Err())

	v.Number("year", "MMXXI")
	assert.Error(t, v.Err())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "").
		OneOf("category", "Poetry", "Journal", "Review Paper").
		MaxLen("title", "short", 200).
		Custom("image", true, "An image is required for new members").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "image", ae.Details[2].Field)
}
