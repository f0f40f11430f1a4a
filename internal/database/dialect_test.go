package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO learners (name, email) VALUES (?, ?)",
			expected: "INSERT INTO learners (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE learners SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE learners SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	keys := []string{"learner_id", "word"}
	values := []string{"correct_count", "updated_at"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO word_progress (learner_id, word, correct_count, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (learner_id, word) DO UPDATE SET correct_count = excluded.correct_count, updated_at = excluded.updated_at",
		},
		{
			name:     "PostgreSQL",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO word_progress (learner_id, word, correct_count, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (learner_id, word) DO UPDATE SET correct_count = excluded.correct_count, updated_at = excluded.updated_at",
		},
		{
			name:     "MySQL",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO word_progress (learner_id, word, correct_count, updated_at) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE correct_count = VALUES(correct_count), updated_at = VALUES(updated_at)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.Upsert("word_progress", keys, values)
			if result != tt.expected {
				t.Errorf("Upsert() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestBoolValue(t *testing.T) {
	if got := NewSQLiteDialect().BoolValue(true); got != "1" {
		t.Errorf("SQLite BoolValue(true) = %v, want 1", got)
	}
	if got := NewPostgresDialect().BoolValue(false); got != "FALSE" {
		t.Errorf("Postgres BoolValue(false) = %v, want FALSE", got)
	}
}

func TestMySQLDSNAddsParseTime(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"user:pw@tcp(localhost:3306)/vocab", "user:pw@tcp(localhost:3306)/vocab?parseTime=true"},
		{"user:pw@tcp(localhost:3306)/vocab?charset=utf8mb4", "user:pw@tcp(localhost:3306)/vocab?charset=utf8mb4&parseTime=true"},
		{"user:pw@tcp(localhost:3306)/vocab?parseTime=false", "user:pw@tcp(localhost:3306)/vocab?parseTime=false"},
	}

	dialect := NewMySQLDialect()
	for _, tt := range tests {
		if got := dialect.DSN(DialectConfig{URL: tt.url}); got != tt.expected {
			t.Errorf("DSN(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header
CREATE TABLE a (id INTEGER);

-- second
CREATE TABLE b (id INTEGER);
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2", len(stmts))
	}
	if stmts[1] != "CREATE TABLE b (id INTEGER)" {
		t.Errorf("splitStatements()[1] = %q", stmts[1])
	}
}
