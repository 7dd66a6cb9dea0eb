package contact

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one user-facing validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every offending field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "contact: invalid fields: " + strings.Join(names, ", ")
}

// ByField indexes messages by form field name for templates.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// NotificationError is a failed owner notification.  The message it refers
// to is already stored.
type NotificationError struct {
	To  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("contact: notify %s: %v", e.To, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// fieldName maps struct fields to the form input names.
func fieldName(f string) string {
	switch f {
	case "Name":
		return "nombre"
	case "Email":
		return "email"
	case "Phone":
		return "telefono"
	case "Company":
		return "empresa"
	case "Subject":
		return "asunto"
	case "Message":
		return "mensaje"
	}
	return strings.ToLower(f)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "email":
		return "Introduce una dirección de correo electrónico válida."
	case "max":
		return fmt.Sprintf("Máximo %s caracteres.", fe.Param())
	}
	return "Valor no válido."
}
