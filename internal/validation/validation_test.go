package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "simple", email: "alice@example.com"},
		{name: "plus tag", email: "alice+sync@example.co.uk"},
		{name: "empty", email: "", wantErr: true},
		{name: "no at", email: "alice.example.com", wantErr: true},
		{name: "display name", email: "Alice <alice@example.com>", wantErr: true},
		{name: "no domain dot", email: "alice@localhost", wantErr: true},
		{name: "too long", email: strings.Repeat("a", 250) + "@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "minimum length", password: "secret"},
		{name: "long", password: "correct horse battery staple"},
		{name: "empty", password: "", wantErr: true},
		{name: "too short", password: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEntityID(t *testing.T) {
	assert.NoError(t, ValidateEntityID(uuid.New().String()))
	assert.NoError(t, ValidateEntityID(uuid.Must(uuid.NewV7()).String()))
	assert.Error(t, ValidateEntityID(""))
	assert.Error(t, ValidateEntityID("not-a-uuid"))
}
