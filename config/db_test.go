package config

import (
	"strings"
	"testing"
)

func TestMysqlDSNReportsMatchedRows(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("MYSQL_USER", "fba")
	t.Setenv("MYSQL_PASS", "secret")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_DB", "fbadash")

	dsn := mysqlDSN()
	if !strings.HasPrefix(dsn, "fba:secret@tcp(db:3307)/fbadash?") {
		t.Errorf("dsn = %q", dsn)
	}
	if !strings.Contains(dsn, "clientFoundRows=true") {
		t.Errorf("dsn = %q, want clientFoundRows=true", dsn)
	}

	t.Setenv("MYSQL_DSN", "u:p@tcp(x:1)/y")
	if got := mysqlDSN(); got != "u:p@tcp(x:1)/y" {
		t.Errorf("explicit dsn = %q", got)
	}
}
