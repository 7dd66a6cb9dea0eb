package content

import (
	"fmt"
	"path"
	"strings"
)

// Upload subdirectories under the media root, one per image owner.
const (
	DirCompany      = "empresa/"
	DirServiceIcons = "servicios/icons/"
	DirServices     = "servicios/"
	DirProjects     = "proyectos/"
	DirClients      = "clientes/"
	DirTeam         = "equipo/"
	DirConfig       = "config/"
)

// checkImage rejects a stored image path that escapes dir.  Nil and empty
// paths are accepted since every image column is optional.
func checkImage(dir string, p *string) error {
	if p == nil || *p == "" {
		return nil
	}
	clean := path.Clean(*p)
	if clean != *p || !strings.HasPrefix(clean, dir) || strings.Contains(clean, "..") {
		return fmt.Errorf("%w: image %q must live under %s", ErrInvalid, *p, dir)
	}
	return nil
}

// MediaURL joins base and a stored image path for templates.  Empty input
// yields an empty string.
func MediaURL(base string, p *string) string {
	if p == nil || *p == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(*p, "/")
}
