// Package srcdir loads style definitions from a directory of YAML, JSON,
// or TOML files, used to seed an empty store at startup. One file holds
// one style. File layout:
//
//	name: Dark wiki
//	enabled: true
//	sections:
//	  - domains: ["wikipedia.org"]
//	    code: "body { background: #111 }"
package srcdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/calliso/stylecache/internal/styles/common/log"
	"github.com/calliso/stylecache/internal/styles/domain"
)

// Putter is the slice of the store the importer needs.
type Putter interface {
	Put(ctx context.Context, st *domain.Style) (int64, error)
	Count() int
}

// LoadDirectory parses every supported file under dir into styles, in
// lexical path order. Unsupported extensions are skipped; a file that
// fails to parse aborts the load.
func LoadDirectory(dir string) ([]*domain.Style, error) {
	var styles []*domain.Style
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		parser := parserFor(path)
		if parser == nil {
			return nil
		}
		st, err := loadFile(path, parser)
		if err != nil {
			return fmt.Errorf("error parsing style file %s: %w", path, err)
		}
		styles = append(styles, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return styles, nil
}

// Seed imports the directory's styles into an empty store. A non-empty
// store is left untouched so a restart never duplicates earlier imports.
func Seed(ctx context.Context, dir string, store Putter) (int, error) {
	if store.Count() > 0 {
		log.Debug(map[string]any{"dir": dir}, "store already populated, skipping seed")
		return 0, nil
	}
	styles, err := LoadDirectory(dir)
	if err != nil {
		return 0, err
	}
	for _, st := range styles {
		if _, err := store.Put(ctx, st); err != nil {
			return 0, fmt.Errorf("seeding style %q: %w", st.Name, err)
		}
	}
	return len(styles), nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

func loadFile(path string, parser koanf.Parser) (*domain.Style, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	var st domain.Style
	if err := k.Unmarshal("", &st); err != nil {
		return nil, err
	}
	st.ID = 0 // ids are always assigned by the store
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}
