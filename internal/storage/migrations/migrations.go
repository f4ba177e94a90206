// Package migrations embeds the schema of every backend and applies it.
//
// Postgres and SQLite record applied files in a schema_migrations table and
// apply each pending file in its own transaction. ClickHouse has no
// transactions, so its files must be idempotent and are replayed every run.
package migrations

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ledgerTable records applied migration versions.
const ledgerTable = "schema_migrations"

// Migration is one embedded SQL file. Version is the file name.
type Migration struct {
	Version string
	SQL     string
}

// Load reads the .sql files of dir in lexical order. Blank files are skipped.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Version: name, SQL: string(data)})
	}
	return out, nil
}

// pending drops the migrations whose version is in applied.
func pending(all []Migration, applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}
