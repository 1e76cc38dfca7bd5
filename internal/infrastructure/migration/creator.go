package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var migrationTemplate = template.Must(template.New("migration").Parse(
	`-- {{.Name}} ({{.Direction}})
-- Created: {{.Created}}

`))

// Entry is one migration pair found in a source
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// BaseName returns the shared file prefix, e.g. "000002_create_carts"
func (e Entry) BaseName() string {
	return fmt.Sprintf("%06d_%s", e.Version, e.Name)
}

// CreatedMigration describes the files written by CreateMigration
type CreatedMigration struct {
	Entry
	UpPath   string
	DownPath string
}

// ErrEmptyMigrationName is returned when a name sanitizes to nothing
var ErrEmptyMigrationName = errors.New("migration name must contain letters or digits")

// CreateMigration writes an empty up/down pair numbered one past the
// highest version already present in dir.
func CreateMigration(dir, name string) (*CreatedMigration, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, ErrEmptyMigrationName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	created := &CreatedMigration{Entry: Entry{Version: next, Name: clean, HasDown: true}}
	base := filepath.Join(dir, created.BaseName())
	created.UpPath = base + upSuffix
	created.DownPath = base + downSuffix

	now := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigration(created.UpPath, clean, "up", now); err != nil {
		return nil, err
	}
	if err := writeMigration(created.DownPath, clean, "down", now); err != nil {
		_ = os.Remove(created.UpPath)
		return nil, err
	}
	return created, nil
}

func writeMigration(path, name, direction, created string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	data := struct{ Name, Direction, Created string }{name, direction, created}
	if err := migrationTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and collapses every run of separators into
// a single underscore. Other characters are dropped.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in fsys ordered by version. Files
// that do not follow the NNNNNN_name.up.sql pattern are ignored. A missing
// directory yields an empty list.
func ListMigrations(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		version, name, down, ok := parseFileName(f.Name())
		if !ok {
			continue
		}
		entry, seen := byVersion[version]
		if !seen {
			entry = &Entry{Version: version, Name: name}
			byVersion[version] = entry
		}
		if down {
			entry.HasDown = true
		}
	}

	entries := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}

func parseFileName(file string) (version uint, name string, down, ok bool) {
	var base string
	switch {
	case strings.HasSuffix(file, upSuffix):
		base = strings.TrimSuffix(file, upSuffix)
	case strings.HasSuffix(file, downSuffix):
		base = strings.TrimSuffix(file, downSuffix)
		down = true
	default:
		return 0, "", false, false
	}

	prefix, rest, found := strings.Cut(base, "_")
	if !found || rest == "" {
		return 0, "", false, false
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", false, false
	}
	return uint(v), rest, down, true
}
