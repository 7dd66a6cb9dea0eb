// internal/csrf/csrf.go
//
// Stateless CSRF tokens for public forms.
//
// Context
// -------
// The contact page embeds a hidden `csrf_token` input generated at render
// time.  POST handlers verify it before touching storage.  Tokens are
// self-contained, so any instance behind the load balancer can verify them:
//
//	base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro) )
//
// The nonce is 16 random bytes.  The timestamp is 8 bytes, big-endian.
//
// Workflow
// --------
//   - New(key, maxAge)  builds a Signer.  An empty key yields a random,
//     process-local key and a startup WARN.
//   - Signer.Token()    returns a token for one form render.
//   - Signer.Verify(t)  constant-time check of signature and age.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"go.uber.org/zap"
)

// FieldName is the hidden form input carrying the token.
const FieldName = "csrf_token"

const (
	nonceLen   = 16
	stampLen   = 8
	tokenBytes = nonceLen + stampLen + sha256.Size

	// DefaultMaxAge is how long a rendered form stays submittable.
	DefaultMaxAge = 2 * time.Hour

	// Tokens stamped further in the future than this are rejected.
	maxSkew = time.Minute
)

// ErrShortKey is returned by New for keys below 32 bytes.
var ErrShortKey = errors.New("csrf key must be at least 32 bytes")

// Signer issues and verifies tokens.  Safe for concurrent use.
type Signer struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// New builds a Signer.  key is base64url (padding optional) or raw text of
// at least 32 bytes.
func New(key string, maxAge time.Duration) (*Signer, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	s := &Signer{maxAge: maxAge, now: time.Now}

	if key == "" {
		s.key = make([]byte, 32)
		if _, err := rand.Read(s.key); err != nil {
			return nil, err
		}
		zap.S().Warn("security.csrf_key not set, using a random key; tokens will not survive restarts")
		return s, nil
	}

	if b, err := base64.RawURLEncoding.DecodeString(trimPad(key)); err == nil && len(b) >= 32 {
		s.key = b
		return s, nil
	}
	if len(key) < 32 {
		return nil, ErrShortKey
	}
	s.key = []byte(key)
	return s, nil
}

// Token creates a new token.  Call once per form render.
func (s *Signer) Token() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf[:nonceLen]); err != nil {
		return "", err
	}
	binary.BigEndian.PutUint64(buf[nonceLen:nonceLen+stampLen], uint64(s.now().UnixMicro()))
	copy(buf[nonceLen+stampLen:], s.sign(buf[:nonceLen+stampLen]))
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok is authentic and within the age window.
func (s *Signer) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(raw[nonceLen : nonceLen+stampLen])))
	now := s.now()
	if now.Sub(issued) > s.maxAge || issued.Sub(now) > maxSkew {
		return false
	}
	return hmac.Equal(raw[nonceLen+stampLen:], s.sign(raw[:nonceLen+stampLen]))
}

func (s *Signer) sign(msg []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(msg)
	return mac.Sum(nil)
}

func trimPad(s string) string {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return s
}
