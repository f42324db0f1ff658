package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tordrt/myschema"
	"github.com/tordrt/myschema/internal/formatter"
	"github.com/tordrt/myschema/internal/plan"
)

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tablesStr  string
		wantTables []string
	}{
		{
			name:       "single table",
			tablesStr:  "users",
			wantTables: []string{"users"},
		},
		{
			name:       "multiple tables",
			tablesStr:  "users,posts,comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "tables with spaces",
			tablesStr:  "users, posts, comments",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty string",
			tablesStr:  "",
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTables := parseTableList(tt.tablesStr)

			if len(gotTables) != len(tt.wantTables) {
				t.Errorf("parseTableList() returned %d tables, want %d", len(gotTables), len(tt.wantTables))
				return
			}

			for i, table := range gotTables {
				if table != tt.wantTables[i] {
					t.Errorf("parseTableList() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var prompt bytes.Buffer
			got := confirm(strings.NewReader(tt.input), &prompt, "Apply?")
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if prompt.String() != "Apply? [y/N]: " {
				t.Errorf("unexpected prompt %q", prompt.String())
			}
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag    string
		path    string
		want    formatter.Format
		wantErr bool
	}{
		{"", "", formatter.FormatJSON, false},
		{"yaml", "", formatter.FormatYAML, false},
		{"", "schema.yml", formatter.FormatYAML, false},
		{"", "schema.csv", formatter.FormatTabular, false},
		{"json", "schema.csv", formatter.FormatJSON, false},
		{"", "schema.xlsx", formatter.FormatXLSX, false},
		{"", "schema.xls", "", true},
		{"xml", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"|"+tt.path, func(t *testing.T) {
			got, err := resolveFormat(tt.flag, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveFormat(%q, %q) = %s, want %s", tt.flag, tt.path, got, tt.want)
			}
		})
	}
}

func TestReportWrite(t *testing.T) {
	stmts := []plan.Statement{{Object: "users", Kind: plan.KindCreateTable, SQL: "CREATE TABLE `users` (`id` int)"}}

	tests := []struct {
		name   string
		dry    bool
		res    *myschema.WriteResult
		err    error
		want   string
		hasErr bool
	}{
		{
			name: "no changes",
			res:  &myschema.WriteResult{Database: "shop"},
			want: "No changes required.\n",
		},
		{
			name: "created and applied",
			res:  &myschema.WriteResult{Database: "shop", Created: true, Statements: stmts, Executed: 1},
			want: "Created database `shop`\nWrite complete: 1 statement(s) applied.\n",
		},
		{
			name: "aborted",
			res:  &myschema.WriteResult{Database: "shop", Statements: stmts, Aborted: true},
			want: "Aborted by user.\n",
		},
		{
			name: "dry run",
			dry:  true,
			res:  &myschema.WriteResult{Database: "shop", Statements: stmts},
			want: "-- 1. create_table users\nCREATE TABLE `users` (`id` int);\n",
		},
		{
			name:   "failure",
			res:    &myschema.WriteResult{Database: "shop", Statements: stmts},
			err:    errors.New("boom"),
			hasErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dryRun = tt.dry
			t.Cleanup(func() { dryRun = false })

			var out bytes.Buffer
			err := reportWrite(&out, zerolog.Nop(), tt.res, tt.err)
			if tt.hasErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	current := writeDocument(t, dir, "current.json", `{
  "database": {"name": "shop"},
  "objects": [
    {"name": "users", "type": "table", "fields": [
      {"name": "id", "position": 1, "type": "int", "nullable": false}
    ]}
  ]
}`)
	desired := writeDocument(t, dir, "desired.yaml", `
database:
  name: shop
objects:
  - name: users
    type: table
    fields:
      - {name: id, position: 1, type: int, nullable: false}
      - {name: email, position: 2, type: varchar(100), nullable: false}
    indexes:
      - {name: uniq_email, unique: true, columns: [email]}
`)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"diff", current, desired})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("diff failed: %v (%s)", err, errOut.String())
	}

	want := "-- 1. alter_table users\n" +
		"ALTER TABLE `users` ADD COLUMN `email` varchar(100) NOT NULL AFTER `id`, ADD UNIQUE KEY `uniq_email` (`email`);\n"
	if out.String() != want {
		t.Errorf("diff output = %q, want %q", out.String(), want)
	}

	out.Reset()
	rootCmd.SetArgs([]string{"diff", desired, desired})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if out.String() != "No changes required.\n" {
		t.Errorf("diff output = %q, want no changes", out.String())
	}
}

func TestDumpRejectsConflictingOutputs(t *testing.T) {
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"dump", "-o", "schema.json", "-d", "schema"})
	t.Cleanup(func() {
		outputFile, outputDir = "", ""
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "cannot use both") {
		t.Errorf("expected conflicting output error, got %v", err)
	}
}

func TestLoadConfigConnectTimeoutFlag(t *testing.T) {
	t.Cleanup(func() {
		connectTimeout = 0
		rootCmd.PersistentFlags().Lookup("connect-timeout").Changed = false
	})

	if err := rootCmd.ParseFlags([]string{"--connect-timeout", "3s"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout = %v, want 3s", cfg.ConnectTimeout)
	}
	if dsn := cfg.MySQLDSN("shop"); !strings.Contains(dsn, "timeout=3s") {
		t.Errorf("MySQLDSN() = %q, want timeout=3s", dsn)
	}
}
