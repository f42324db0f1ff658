//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tordrt/myschema"
	"github.com/tordrt/myschema/internal/db"
	"github.com/tordrt/myschema/internal/plan"
	"github.com/tordrt/myschema/internal/schema"
)

// mysqlURL returns a mysql:// URL selecting database. An empty name
// connects at server level.
func mysqlURL(t *testing.T, database string) string {
	t.Helper()

	// Use environment variable if set, otherwise use default test connection string
	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/"
	}
	dsn, err := db.WithDatabase(connString, database)
	if err != nil {
		t.Fatalf("Invalid MYSQL_TEST_URL: %v", err)
	}
	return "mysql://" + dsn
}

// scratchDatabase reserves a unique database name and drops it after the test
func scratchDatabase(t *testing.T) string {
	t.Helper()

	name := fmt.Sprintf("myschema_it_%d", time.Now().UnixNano())
	serverURL := mysqlURL(t, "")
	t.Cleanup(func() {
		ctx := context.Background()
		client, err := db.NewMySQLClient(ctx, strings.TrimPrefix(serverURL, "mysql://"))
		if err != nil {
			t.Logf("cleanup: %v", err)
			return
		}
		defer client.Close()
		if _, err := client.ExecContext(ctx, "DROP DATABASE IF EXISTS `"+name+"`"); err != nil {
			t.Logf("cleanup: %v", err)
		}
	})
	return name
}

func shopDocument() *schema.Document {
	return &schema.Document{
		Database: schema.Database{DefaultCharacterSet: "utf8mb4", DefaultCollation: "utf8mb4_unicode_ci"},
		Objects: []schema.Object{
			{
				Name:      "users",
				Type:      schema.ObjectTable,
				Engine:    "InnoDB",
				Collation: "utf8mb4_unicode_ci",
				Fields: []schema.Field{
					{Name: "id", Position: 1, Type: "int unsigned", DefaultKind: schema.DefaultNone, Extra: "auto_increment"},
					{Name: "username", Position: 2, Type: "varchar(50)", DefaultKind: schema.DefaultNone, Collation: "utf8mb4_unicode_ci"},
					{Name: "status", Position: 3, Type: "enum('active','inactive','banned')", DefaultKind: schema.DefaultLiteral, DefaultValue: "active", Collation: "utf8mb4_unicode_ci"},
					{Name: "created_at", Position: 4, Type: "timestamp", DefaultKind: schema.DefaultExpression, DefaultValue: "CURRENT_TIMESTAMP"},
				},
				Indexes: []schema.Index{
					{Name: "PRIMARY", Unique: true, Type: "BTREE", Columns: []schema.IndexColumn{{Name: "id"}}},
					{Name: "uniq_username", Unique: true, Type: "BTREE", Columns: []schema.IndexColumn{{Name: "username"}}},
				},
			},
			{
				Name:      "active_users",
				Type:      schema.ObjectView,
				CreateSQL: "CREATE VIEW `active_users` AS SELECT `id`, `username` FROM `users` WHERE `status` = 'active'",
			},
		},
	}
}

func TestMySQLWriteAndDump(t *testing.T) {
	ctx := context.Background()
	serverURL := mysqlURL(t, "")
	name := scratchDatabase(t)

	doc := shopDocument()
	res, err := myschema.Write(ctx, serverURL, doc, &myschema.WriteOptions{Database: name})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !res.Created {
		t.Error("Expected the database to be created")
	}
	if res.Executed != 2 {
		t.Errorf("Expected 2 statements, executed %d", res.Executed)
	}

	dumped, err := myschema.Dump(ctx, mysqlURL(t, name), nil)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	if dumped.Database.Name != name {
		t.Errorf("Expected database %s, got %s", name, dumped.Database.Name)
	}
	verifyObjectsExist(t, dumped, []string{"active_users", "users"})

	users := findObject(t, dumped, "users")
	verifyColumns(t, users, []string{"id", "username", "status", "created_at"})
	verifyPrimaryKey(t, users, []string{"id"})
	verifyIndex(t, users, "uniq_username", true, []string{"username"})

	if users.Fields[2].DefaultKind != schema.DefaultLiteral || users.Fields[2].DefaultValue != "active" {
		t.Errorf("Expected literal default 'active', got %s %q", users.Fields[2].DefaultKind, users.Fields[2].DefaultValue)
	}
	if users.Fields[3].DefaultKind != schema.DefaultExpression {
		t.Errorf("Expected expression default for created_at, got %s", users.Fields[3].DefaultKind)
	}
	if users.CreateSQL == "" || findObject(t, dumped, "active_users").CreateSQL == "" {
		t.Error("Expected SHOW CREATE output on every object")
	}

	// Writing the dump back only replaces the view
	res, err = myschema.Write(ctx, serverURL, dumped, &myschema.WriteOptions{Database: name})
	if err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	if len(res.Statements) != 1 || res.Statements[0].Kind != plan.KindCreateView {
		t.Errorf("Expected only the view to be replaced, got %v", res.Statements)
	}
}

func TestMySQLWriteAltersExistingTable(t *testing.T) {
	ctx := context.Background()
	serverURL := mysqlURL(t, "")
	name := scratchDatabase(t)

	if _, err := myschema.Write(ctx, serverURL, shopDocument(), &myschema.WriteOptions{Database: name}); err != nil {
		t.Fatalf("Initial write failed: %v", err)
	}

	changed := shopDocument()
	users := &changed.Objects[0]
	status, createdAt := users.Fields[2], users.Fields[3]
	status.Position, createdAt.Position = 4, 5
	users.Fields = []schema.Field{
		users.Fields[0],
		users.Fields[1],
		{Name: "email", Position: 3, Type: "varchar(100)", Nullable: true, DefaultKind: schema.DefaultNull, Collation: "utf8mb4_unicode_ci"},
		status,
		createdAt,
	}
	users.Indexes = append(users.Indexes, schema.Index{Name: "idx_email", Type: "BTREE", Columns: []schema.IndexColumn{{Name: "email", Length: schema.IntPtr(20)}}})
	changed.Objects = changed.Objects[:1]

	asked := false
	res, err := myschema.Write(ctx, serverURL, changed, &myschema.WriteOptions{
		Database: name,
		Confirm: func(database string, statements int) bool {
			asked = true
			return false
		},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !asked || !res.Aborted || res.Executed != 0 {
		t.Fatalf("Expected the write to be declined, got %+v", res)
	}

	res, err = myschema.Write(ctx, serverURL, changed, &myschema.WriteOptions{Database: name})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(res.Statements) != 1 || res.Statements[0].Kind != plan.KindAlterTable {
		t.Fatalf("Expected one ALTER TABLE, got %v", res.Statements)
	}

	dumped, err := myschema.Dump(ctx, mysqlURL(t, name), &myschema.Options{Tables: []string{"users"}})
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	got := findObject(t, dumped, "users")
	verifyColumns(t, got, []string{"id", "username", "email", "status", "created_at"})
	verifyIndex(t, got, "idx_email", false, []string{"email"})

	// Planning again against the live schema is a no-op
	res, err = myschema.Write(ctx, serverURL, changed, &myschema.WriteOptions{Database: name, DryRun: true})
	if err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}
	if len(res.Statements) != 0 {
		t.Errorf("Expected no changes, got %v", res.Statements)
	}
}

func TestMySQLDryRunOnMissingDatabase(t *testing.T) {
	ctx := context.Background()
	serverURL := mysqlURL(t, "")
	name := scratchDatabase(t)

	res, err := myschema.Write(ctx, serverURL, shopDocument(), &myschema.WriteOptions{Database: name, DryRun: true})
	if err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}
	if res.Created || len(res.Statements) != 2 {
		t.Errorf("Expected a two statement plan without side effects, got %+v", res)
	}

	if _, err := myschema.Dump(ctx, mysqlURL(t, name), nil); err == nil {
		t.Error("Expected dump of a missing database to fail")
	}
}
