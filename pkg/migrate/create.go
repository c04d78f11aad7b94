package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	routinePrefix = "usp_"
	versionLayout = "20060102150405"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	routineDefRe   = regexp.MustCompile(`(?i)CREATE\s+OR\s+REPLACE\s+FUNCTION\s+(usp_[a-z0-9_]+)\s*\(`)
)

// CreateSQLMigration writes <dir>/<version>_<name>.sql.
//
// A name starting with usp_ scaffolds a stored routine the repositories can call
// before their inline fallback; any other name scaffolds a schema change. When
// the routine already exists in dir, the Down section points at the migration
// that defines it instead of dropping it. The version always sorts after the
// newest migration in dir so goose applies it last.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if safe == strings.TrimSuffix(routinePrefix, "_") {
		return "", fmt.Errorf("routine name %q is missing a suffix", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	idx, err := scanMigrations(dir)
	if err != nil {
		return "", err
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", nextVersion(now, idx.latest), safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	body := schemaTemplate(safe)
	if strings.HasPrefix(safe, routinePrefix) {
		body = routineTemplate(safe, idx.routines[safe])
	}
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

type migrationIndex struct {
	latest   string
	routines map[string]string // routine -> newest file defining it
}

func scanMigrations(dir string) (migrationIndex, error) {
	idx := migrationIndex{routines: map[string]string{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return idx, fmt.Errorf("read dir %q: %w", dir, err)
	}
	// ReadDir sorts by name, which is version order for valid files.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if m[1] > idx.latest {
			idx.latest = m[1]
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return idx, fmt.Errorf("read file %q: %w", e.Name(), err)
		}
		for _, def := range routineDefRe.FindAllStringSubmatch(string(b), -1) {
			idx.routines[strings.ToLower(def[1])] = e.Name()
		}
	}
	return idx, nil
}

func nextVersion(now time.Time, latest string) string {
	version := now.UTC().Format(versionLayout)
	if latest == "" || version > latest {
		return version
	}
	last, err := time.Parse(versionLayout, latest)
	if err != nil {
		return version
	}
	return last.Add(time.Second).Format(versionLayout)
}

func schemaTemplate(name string) string {
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, name, name)
}

func routineTemplate(routine, definedIn string) string {
	down := fmt.Sprintf("DROP FUNCTION IF EXISTS %s();\n", routine)
	if definedIn != "" {
		down = fmt.Sprintf(`-- +goose StatementBegin
-- restore %s as defined in %s
-- +goose StatementEnd
`, routine, definedIn)
	}
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
CREATE OR REPLACE FUNCTION %s()
RETURNS VOID
LANGUAGE plpgsql AS $$
BEGIN
  NULL;
END
$$;
-- +goose StatementEnd

-- +goose Down
%s`, routine, down)
}
