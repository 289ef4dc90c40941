package submission

import (
	"fmt"
	"strings"
)

// Field names accepted by the consultation form.
const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldChannel = "channel"
	FieldMessage = "message"
)

// Fields is the consultation form payload.
type Fields struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// Set assigns a field by its form name.
func (f *Fields) Set(name, value string) error {
	switch name {
	case FieldName:
		f.Name = value
	case FieldPhone:
		f.Phone = value
	case FieldEmail:
		f.Email = value
	case FieldChannel:
		f.Channel = value
	case FieldMessage:
		f.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Get reads a field by its form name.
func (f Fields) Get(name string) (string, bool) {
	switch name {
	case FieldName:
		return f.Name, true
	case FieldPhone:
		return f.Phone, true
	case FieldEmail:
		return f.Email, true
	case FieldChannel:
		return f.Channel, true
	case FieldMessage:
		return f.Message, true
	}
	return "", false
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Fields) Trimmed() Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Email:   strings.TrimSpace(f.Email),
		Channel: strings.TrimSpace(f.Channel),
		Message: strings.TrimSpace(f.Message),
	}
}
