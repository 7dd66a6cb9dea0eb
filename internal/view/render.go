// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed template sets.
//
// Lookup precedence (first hit wins), resolved per file:
//  1. sites/<domain>/templates/<file>
//  2. themes/<theme>/templates/<file>
//  3. templates/<file>
//
// Every page is parsed together with layout.html.  The layout renders the
// shell and calls {{ template "content" . }}; pages define "content" and
// may override {{ block "title" . }}.  A site can therefore replace a single
// page, or only its layout, without copying the rest.
//
// Rendering goes to a buffer first, so a template error never leaves a
// half-written 200 on the wire.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yanizio/brochure/internal/cache"
	"github.com/yanizio/brochure/internal/content"
	"github.com/yanizio/brochure/internal/site"
)

const (
	layoutFile = "layout.html"

	// MediaPrefix is where uploaded images are served from.
	MediaPrefix = "/media/"

	cacheSize = 512
)

// NavItem is one entry of the main menu.
type NavItem struct {
	Href, Label string
}

// Nav is the main menu shared by every site.
var Nav = []NavItem{
	{"/", "Inicio"},
	{"/servicios", "Servicios"},
	{"/proyectos", "Proyectos"},
	{"/clientes", "Clientes"},
	{"/equipo", "Equipo"},
	{"/sobre-nosotros", "Nosotros"},
	{"/contacto", "Contacto"},
}

// ErrNotFound is returned when no directory in the chain holds a template.
var ErrNotFound = errors.New("template not found")

// Options tune an Engine.
type Options struct {
	Root  string // directory holding sites/, themes/, templates/
	Theme string
	// NoCache re-parses on every render.  Useful while editing templates.
	NoCache bool
}

// Engine renders pages for any site.  Safe for concurrent use.
type Engine struct {
	opts  Options
	sets  *cache.LRU[string, *template.Template]
	funcs template.FuncMap
}

// New builds an Engine.
func New(opts Options) *Engine {
	if opts.Theme == "" {
		opts.Theme = "default"
	}
	e := &Engine{opts: opts, sets: cache.New[string, *template.Template](cacheSize)}
	e.funcs = e.buildFuncMap()
	return e
}

// Render executes page for s and writes it with status.
func (e *Engine) Render(w http.ResponseWriter, status int, s *site.Site, page string, data any) error {
	t, err := e.load(s, page)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return fmt.Errorf("execute %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// Purge drops every parsed set.
func (e *Engine) Purge() { e.sets.Purge() }

//
// internal: load
//

func (e *Engine) load(s *site.Site, page string) (*template.Template, error) {
	domain := ""
	if s != nil {
		domain = s.Domain
	}
	key := strings.Join([]string{domain, e.opts.Theme, page}, "::")

	if !e.opts.NoCache {
		if t, ok := e.sets.Get(key); ok {
			return t, nil
		}
	}

	layout, err := e.find(domain, layoutFile)
	if err != nil {
		return nil, err
	}
	body, err := e.find(domain, page+".html")
	if err != nil {
		return nil, err
	}

	t, err := template.New(layoutFile).Funcs(e.funcs).ParseFiles(layout, body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}

	if !e.opts.NoCache {
		e.sets.Add(key, t)
	}
	return t, nil
}

// find walks the override chain for one file.
func (e *Engine) find(domain, file string) (string, error) {
	var paths []string
	if domain != "" && safeSegment(domain) {
		paths = append(paths, filepath.Join(e.opts.Root, "sites", domain, "templates", file))
	}
	paths = append(paths,
		filepath.Join(e.opts.Root, "themes", e.opts.Theme, "templates", file),
		filepath.Join(e.opts.Root, "templates", file),
	)
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, file)
}

// safeSegment rejects domains that would walk out of sites/.
func safeSegment(s string) bool {
	return !strings.ContainsAny(s, `/\`) && s != "." && s != ".."
}

//
// func-map builders
//

func (e *Engine) buildFuncMap() template.FuncMap {
	assetPrefix := "/themes/" + e.opts.Theme + "/assets/"
	return template.FuncMap{
		"asset": func(p string) string { return assetPrefix + strings.TrimPrefix(p, "/") },
		"media": func(p *string) string { return content.MediaURL(MediaPrefix, p) },
		"deref": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"lines": func(s string) []string {
			var out []string
			for _, l := range strings.Split(s, "\n") {
				if l = strings.TrimSpace(l); l != "" {
					out = append(out, l)
				}
			}
			return out
		},
		"year": func() int { return time.Now().Year() },
		"nav":  func() []NavItem { return Nav },
		"dict": dict,
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
