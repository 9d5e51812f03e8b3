package schema

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// TestDecimal_MatchesDriverFormatting inserts DECIMAL(10,3) literals into
// a real server, reads each back through database/sql +
// go-sql-driver/mysql, and logs any literal whose driver text differs.
// It does not call formatString and does not fail on a difference.
// Skipped unless -mysql is passed.
func TestDecimal_MatchesDriverFormatting(t *testing.T) {
	if *mysqlDSN == "" {
		t.Skip(skipDecimalReason)
	}
	db, err := sql.Open("mysql", *mysqlDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`drop table if exists schema_decimal_test`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`create table schema_decimal_test(value decimal(10,3))`); err != nil {
		t.Fatal(err)
	}
	defer db.Exec(`drop table schema_decimal_test`)

	cases := []string{"123.456", "-123.456", "0.000", "9999999.999"}
	for _, lit := range cases {
		t.Run(lit, func(t *testing.T) {
			if _, err := db.Exec(fmt.Sprintf(`insert into schema_decimal_test values (%s)`, lit)); err != nil {
				t.Fatal(err)
			}
			var got string
			if err := db.QueryRow(`select value from schema_decimal_test`).Scan(&got); err != nil {
				t.Fatal(err)
			}
			if _, err := db.Exec(`delete from schema_decimal_test`); err != nil {
				t.Fatal(err)
			}
			if got != lit {
				t.Logf("driver returned %q for literal %q (acceptable if only trailing-zero padding differs)", got, lit)
			}
		})
	}
}

var (
	mysqlDSN = flag.String("mysql", "", "mysql DSN used for the decimal-formatting integration test")

	skipDecimalReason = `SKIPPED: pass -mysql flag to run this test
example: go test ./schema/... -mysql 'root:password@tcp(localhost:3306)/test'
`
)

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}
