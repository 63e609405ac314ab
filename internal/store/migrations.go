package store

import "strings"

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS deadlines (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_title   TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_date  DATETIME,
	due_date    DATETIME NOT NULL,
	category    TEXT NOT NULL DEFAULT 'General',
	url         TEXT NOT NULL DEFAULT '',
	is_critical INTEGER NOT NULL DEFAULT 0 CHECK(is_critical IN (0, 1)),
	is_event    INTEGER NOT NULL DEFAULT 0 CHECK(is_event IN (0, 1)),
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deadlines_due_date ON deadlines(due_date);
CREATE INDEX IF NOT EXISTS idx_deadlines_category ON deadlines(category);
CREATE INDEX IF NOT EXISTS idx_deadlines_title ON deadlines(title);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE deadlines ADD COLUMN ai_enhanced INTEGER NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS idx_deadlines_raw_title ON deadlines(raw_title);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS harvest_runs (
	id             TEXT PRIMARY KEY,
	started_at     DATETIME NOT NULL,
	finished_at    DATETIME NOT NULL,
	added          INTEGER NOT NULL DEFAULT 0,
	updated        INTEGER NOT NULL DEFAULT 0,
	skipped        INTEGER NOT NULL DEFAULT 0,
	failed         INTEGER NOT NULL DEFAULT 0,
	parse_failures INTEGER NOT NULL DEFAULT 0,
	candidates     INTEGER NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_harvest_runs_started ON harvest_runs(started_at);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}

// statements splits a migration script into individual statements so it
// can run on drivers that reject multi-statement Exec.
func (m migration) statements() []string {
	var out []string
	for _, stmt := range strings.Split(m.sql, ";\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
