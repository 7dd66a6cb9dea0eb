package ordering

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yanizio/brochure/internal/content"
)

// Scope restricts a reorder to rows matching every non-nil filter.  Each
// filter is accepted only for kinds that carry the column.
type Scope struct {
	Active   *bool
	Featured *bool
	Partner  *bool
	Type     string
}

// ParseScope reads active, featured, partner, and type from q.  Other keys
// are ignored.
func ParseScope(q url.Values) (Scope, error) {
	var s Scope
	for key, dst := range map[string]**bool{
		"active":   &s.Active,
		"featured": &s.Featured,
		"partner":  &s.Partner,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Scope{}, fmt.Errorf("%w: %s=%q", ErrScope, key, raw)
		}
		*dst = &b
	}
	s.Type = q.Get("type")
	return s, nil
}

func (s Scope) validate(k Kind, info kindInfo) error {
	if s.Featured != nil && !info.featured {
		return fmt.Errorf("%w: %s has no featured filter", ErrScope, k)
	}
	if s.Partner != nil && !info.partner {
		return fmt.Errorf("%w: %s has no partner filter", ErrScope, k)
	}
	if s.Type != "" {
		if !info.typed {
			return fmt.Errorf("%w: %s has no type filter", ErrScope, k)
		}
		if !content.ClientType(s.Type).Valid() {
			return fmt.Errorf("%w: %w", ErrScope, content.ErrClientType)
		}
	}
	return nil
}

// where renders the filters as " AND col = ?" fragments, in a fixed order.
func (s Scope) where() (string, []any) {
	var (
		out  string
		args []any
	)
	if s.Active != nil {
		out += " AND active = ?"
		args = append(args, *s.Active)
	}
	if s.Featured != nil {
		out += " AND featured = ?"
		args = append(args, *s.Featured)
	}
	if s.Partner != nil {
		out += " AND partner = ?"
		args = append(args, *s.Partner)
	}
	if s.Type != "" {
		out += " AND type = ?"
		args = append(args, s.Type)
	}
	return out, args
}
