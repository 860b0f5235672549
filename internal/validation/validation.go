package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 6
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
)

// ValidateEmail проверяет, что email имеет вид local@domain
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	at := strings.LastIndexByte(email, '@')
	if !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("email %q has no domain", email)
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateEntityID проверяет, что id сущности является UUID
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("id %q is not a valid UUID", id)
	}

	return nil
}
