// internal/config/secrets.go
//
// Replaces `vault:` references with their secret values.
//
// Only the string fields listed in secretFields are eligible.  The Vault
// client is created lazily, so installs that keep plain secrets in YAML or
// the environment never need VAULT_ADDR.

package config

import (
	"context"
	"fmt"

	"github.com/yanizio/brochure/internal/vault"
)

// SecretResolver turns a reference string into its secret value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// newResolver is swapped in tests.
var newResolver = func(ctx context.Context) (SecretResolver, error) {
	return vault.New(ctx)
}

func secretFields(c *Config) map[string]*string {
	return map[string]*string{
		"database.password": &c.Database.Password,
		"mail.password":     &c.Mail.Password,
		"admin.password":    &c.Admin.Password,
		"security.csrf_key": &c.Security.CSRFKey,
	}
}

func resolveSecrets(ctx context.Context, c *Config) error {
	var r SecretResolver
	for name, field := range secretFields(c) {
		if !vault.IsRef(*field) {
			continue
		}
		if r == nil {
			var err error
			if r, err = newResolver(ctx); err != nil {
				return fmt.Errorf("vault client: %w", err)
			}
		}
		val, err := r.Resolve(ctx, *field)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
		*field = val
	}
	return nil
}
