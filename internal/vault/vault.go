// internal/vault/vault.go
//
// HashiCorp Vault access for configuration secrets.
//
// Context
// -------
// Operators may write any secret in conf/global.yaml (database password,
// SMTP password, admin password, CSRF key) as a reference:
//
//	vault:<mount>/<path>#<key>      e.g. vault:secret/brochure/db#password
//
// The config loader hands every such string to Resolve, which reads the
// KV-v2 secret and returns the plain value.  Values are cached for the
// lifetime of the Client so a reload does not hammer Vault.
//
// Workflow
// --------
//  1. cli, err := vault.New(ctx)               // only when a ref exists.
//  2. val, err := cli.Resolve(ctx, "vault:…")  // per reference.
//
// Notes
// -----
//   - VAULT_ADDR and VAULT_TOKEN come from the environment (SDK defaults).
//   - A background loop renews the token while ctx is alive.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// Prefix marks a config string as a Vault reference.
const Prefix = "vault:"

// ErrBadRef is returned when a reference does not match mount/path#key.
var ErrBadRef = errors.New("vault: malformed secret reference")

// Ref is a parsed secret reference.
type Ref struct {
	Mount string
	Path  string
	Key   string
}

// IsRef reports whether s should be resolved through Vault.
func IsRef(s string) bool { return strings.HasPrefix(s, Prefix) }

// ParseRef splits "vault:mount/path#key" into its parts.
func ParseRef(s string) (Ref, error) {
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return Ref{}, ErrBadRef
	}
	loc, key, ok := strings.Cut(body, "#")
	if !ok || key == "" {
		return Ref{}, ErrBadRef
	}
	mount, rel, ok := strings.Cut(loc, "/")
	if !ok || mount == "" || rel == "" {
		return Ref{}, ErrBadRef
	}
	return Ref{Mount: mount, Path: rel, Key: key}, nil
}

// Client is safe for concurrent use.
type Client struct {
	api *vault.Client

	mu    sync.Mutex
	cache map[Ref]string
}

// New builds a client from the standard Vault environment and starts the
// token renewal loop.
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	c := &Client{api: api, cache: make(map[Ref]string)}
	go c.renewLoop(ctx)
	return c, nil
}

// Resolve returns the secret behind ref.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, ref)
	}

	c.mu.Lock()
	if v, ok := c.cache[r]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	sec, err := c.api.KVv2(r.Mount).Get(ctx, r.Path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", r.Mount, r.Path, err)
	}
	raw, ok := sec.Data[r.Key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in %s/%s", r.Key, r.Mount, r.Path)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: %s/%s#%s is not a string", r.Mount, r.Path, r.Key)
	}

	c.mu.Lock()
	c.cache[r] = val
	c.mu.Unlock()
	return val, nil
}

/*──────────────────────────── token renewal ───────────────────────────────*/

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			zap.S().Warnw("vault token renew failed", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			sleep(ctx, time.Hour)
			continue
		}

		w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			zap.S().Warnw("vault watcher init failed", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		}
		go w.Start()
		c.watch(ctx, w)
		w.Stop()
		sleep(ctx, 15*time.Second)
	}
}

// watch blocks until the watcher finishes or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				zap.S().Warnw("vault token renewal stopped", "err", err)
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				zap.S().Debugw("vault token renewed", "ttl", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
