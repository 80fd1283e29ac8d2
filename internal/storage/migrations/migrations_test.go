package migrations

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"db/010_later.sql": {Data: []byte("CREATE TABLE b (x INT);")},
		"db/002_early.sql": {Data: []byte("CREATE TABLE a (x INT);")},
		"db/003_blank.sql": {Data: []byte("  \n")},
		"db/README.md":     {Data: []byte("ignored")},
	}
	migs, err := Load(fsys, "db")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 2 || migs[1].Version != 10 {
		t.Errorf("unexpected order: %d, %d", migs[0].Version, migs[1].Version)
	}
	if migs[1].Name != "010_later.sql" {
		t.Errorf("unexpected name %q", migs[1].Name)
	}
}

func TestLoad_RejectsBadNames(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no prefix": {"db/schema.sql": {Data: []byte("SELECT 1")}},
		"zero":      {"db/000_init.sql": {Data: []byte("SELECT 1")}},
		"duplicate": {
			"db/001_a.sql": {Data: []byte("SELECT 1")},
			"db/01_b.sql":  {Data: []byte("SELECT 2")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(fsys, "db"); !errors.Is(err, ErrBadMigration) {
				t.Errorf("expected ErrBadMigration, got %v", err)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x Int32) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE b") {
		t.Errorf("unexpected second statement %q", stmts[1])
	}
}

func TestStatements_RejectsSemicolonInLiteral(t *testing.T) {
	ok := Migration{Name: "001_ok.sql", SQL: `SELECT 'it''s fine'; SELECT 1;`}
	if _, err := ok.Statements(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := Migration{Name: "002_bad.sql", SQL: `SELECT 'a;b'`}
	if _, err := bad.Statements(); !errors.Is(err, ErrBadMigration) {
		t.Errorf("expected ErrBadMigration, got %v", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	ch, err := Load(ClickhouseFS, "clickhouse")
	if err != nil {
		t.Fatalf("load clickhouse: %v", err)
	}
	if len(ch) == 0 || ch[0].Version != 1 {
		t.Fatalf("unexpected clickhouse migrations: %+v", ch)
	}
	stmts, err := ch[0].Statements()
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(stmts) != 2 {
		t.Errorf("expected 2 clickhouse statements, got %d", len(stmts))
	}

	pg, err := Load(PostgresFS, "postgres")
	if err != nil {
		t.Fatalf("load postgres: %v", err)
	}
	if len(pg) == 0 || pg[0].Name != "001_backtest.sql" {
		t.Errorf("unexpected postgres migrations: %+v", pg)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/options")
	if err != nil || db != "options" {
		t.Errorf("got %q, %v", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for dsn without database")
	}
}
