// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// `Load()` calls `validateStruct` right after defaults and Vault secrets
// are applied.  Any failure aborts startup, so the binary never runs with
// malformed configuration.  Errors are flattened to "section.field: tag"
// pairs so the boot log points straight at the offending key.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns a single error listing every failed rule, or nil.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		// Namespace looks like "Config.Mail.FallbackTo"; drop the root.
		ns := strings.TrimPrefix(fe.Namespace(), "Config.")
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(ns), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, ", "))
}
