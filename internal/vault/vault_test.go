package vault

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	r, err := ParseRef("vault:secret/brochure/db#password")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	want := Ref{Mount: "secret", Path: "brochure/db", Key: "password"}
	if r != want {
		t.Fatalf("got %+v, want %+v", r, want)
	}
}

func TestParseRefMalformed(t *testing.T) {
	for _, in := range []string{
		"secret/brochure#k",
		"vault:secret#k",
		"vault:secret/brochure",
		"vault:secret/brochure#",
		"vault:/brochure#k",
	} {
		if _, err := ParseRef(in); !errors.Is(err, ErrBadRef) {
			t.Errorf("ParseRef(%q) err = %v, want ErrBadRef", in, err)
		}
	}
}

func TestIsRef(t *testing.T) {
	if !IsRef("vault:a/b#c") || IsRef("plain") {
		t.Fatal("IsRef misclassified input")
	}
}
