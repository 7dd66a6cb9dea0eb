package head

import (
	"strings"
	"testing"
)

func TestTitleEscaped(t *testing.T) {
	b := New()
	if b.Title() != "" {
		t.Fatal("empty builder rendered a title")
	}
	b.SetTitle("first")
	b.SetTitle("Tekon <Ingeniería>")
	if got := string(b.Title()); got != "<title>Tekon &lt;Ingeniería&gt;</title>" {
		t.Fatalf("got %q", got)
	}
}

func TestMetaFirstWins(t *testing.T) {
	b := New()
	b.Meta("description", `Obras "llave en mano"`)
	b.Meta("description", "ignored")
	b.Meta("keywords", "")
	got := string(b.Metas())
	want := `<meta name="description" content="Obras &#34;llave en mano&#34;">`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJSONLDCannotBreakOut(t *testing.T) {
	b := New()
	if err := b.JSONLD(map[string]string{"name": "</script><script>alert(1)"}); err != nil {
		t.Fatal(err)
	}
	got := string(b.JSON())
	if strings.Count(got, "</script>") != 1 {
		t.Fatalf("script element escaped: %s", got)
	}
}
