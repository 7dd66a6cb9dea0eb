// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single render.  Page handlers seed it
// from the site's SiteConfig and Company, then the layout decides where to
// emit each part.
//
// Features
// --------
//   - SetTitle  – single <title> tag (last call wins).
//   - Meta      – <meta name content> pairs, first value per name wins.
//   - JSONLD    – marshals a value into <script type="application/ld+json">.
//   - Render helpers return template.HTML with every value escaped.
package head

import (
	"encoding/json"
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use, though typical use is one goroutine
// per request.
type Builder struct {
	mu sync.Mutex

	title  string
	metas  []meta
	jsonLD []string

	seen map[string]struct{}
}

type meta struct {
	name, content string
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// Meta records a named meta tag.  Empty content is ignored.
func (b *Builder) Meta(name, content string) {
	if content == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[name]; dup {
		return
	}
	b.seen[name] = struct{}{}
	b.metas = append(b.metas, meta{name, content})
}

// JSONLD marshals v as structured data.  encoding/json escapes <, >, and &,
// so the output cannot close the surrounding script element.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.jsonLD = append(b.jsonLD, string(raw))
	b.mu.Unlock()
	return nil
}

// Metas renders every recorded meta tag.
func (b *Builder) Metas() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, m := range b.metas {
		sb.WriteString(`<meta name="`)
		sb.WriteString(template.HTMLEscapeString(m.name))
		sb.WriteString(`" content="`)
		sb.WriteString(template.HTMLEscapeString(m.content))
		sb.WriteString(`">`)
	}
	return template.HTML(sb.String())
}

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}
