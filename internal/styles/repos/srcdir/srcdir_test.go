package srcdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/calliso/stylecache/internal/styles/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

const yamlStyle = `
name: Dark wiki
enabled: true
sections:
  - domains: ["wikipedia.org"]
    code: "body { background: #111 }"
`

const jsonStyle = `{
  "name": "Red links",
  "enabled": false,
  "sections": [
    {"url_prefixes": ["https://news."], "code": "a { color: red }"}
  ]
}`

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_dark.yaml", yamlStyle)
	writeFile(t, dir, "b_links.json", jsonStyle)
	writeFile(t, dir, "notes.txt", "not a style")

	styles, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(styles) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(styles))
	}
	if styles[0].Name != "Dark wiki" || !styles[0].Enabled {
		t.Errorf("unexpected first style: %+v", styles[0])
	}
	if len(styles[0].Sections) != 1 || styles[0].Sections[0].Domains[0] != "wikipedia.org" {
		t.Errorf("unexpected sections: %+v", styles[0].Sections)
	}
	if styles[1].Name != "Red links" || styles[1].Enabled {
		t.Errorf("unexpected second style: %+v", styles[1])
	}
}

func TestLoadDirectoryRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", ": not yaml : [")
	if _, err := LoadDirectory(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDirectoryRejectsInvalidStyle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", "name: no sections\nenabled: true\n")
	if _, err := LoadDirectory(dir); err == nil {
		t.Error("expected validation error for style without sections")
	}
}

type fakePutter struct {
	count  int
	styles []*domain.Style
}

func (f *fakePutter) Put(_ context.Context, st *domain.Style) (int64, error) {
	f.styles = append(f.styles, st)
	return int64(len(f.styles)), nil
}

func (f *fakePutter) Count() int { return f.count }

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", yamlStyle)

	empty := &fakePutter{}
	n, err := Seed(context.Background(), dir, empty)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 1 || len(empty.styles) != 1 {
		t.Errorf("expected 1 seeded style, got n=%d stored=%d", n, len(empty.styles))
	}

	populated := &fakePutter{count: 3}
	n, err = Seed(context.Background(), dir, populated)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 0 || len(populated.styles) != 0 {
		t.Error("expected populated store to be left untouched")
	}
}
