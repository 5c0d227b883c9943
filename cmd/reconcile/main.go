// Command reconcile recomputes the denormalized vote counters on posts and
// comments from the vote ledger and corrects any drift. The vote record write
// and the counter delta are not wrapped in one transaction on the hot path,
// so a crash between the two can leave a counter off by one; this pass is the
// consistency backstop.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	var (
		dsn    = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (or set DATABASE_URL env)")
		dryRun = flag.Bool("dry-run", false, "report drift without correcting it")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("Postgres DSN required (--dsn or DATABASE_URL env)")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	for _, table := range []string{"posts", "comments"} {
		drifted, err := countDrift(ctx, db, table)
		if err != nil {
			log.Fatalf("Failed to measure drift on %s: %v", table, err)
		}
		log.Printf("%s: %d rows with counter drift", table, drifted)

		if *dryRun || drifted == 0 {
			continue
		}

		fixed, err := reconcile(ctx, db, table)
		if err != nil {
			log.Fatalf("Failed to reconcile %s: %v", table, err)
		}
		log.Printf("%s: corrected %d rows", table, fixed)
	}
}

// ledgerCounts joins each content row against the recounted ledger totals.
const ledgerCounts = `
SELECT t.id,
       COALESCE(v.up, 0)   AS up,
       COALESCE(v.down, 0) AS down
FROM %s t
LEFT JOIN (
    SELECT target_id,
           COUNT(*) FILTER (WHERE type = 'upvote')   AS up,
           COUNT(*) FILTER (WHERE type = 'downvote') AS down
    FROM votes
    WHERE target_type = $1
    GROUP BY target_id
) v ON v.target_id = t.id`

func countDrift(ctx context.Context, db *sql.DB, table string) (int, error) {
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM (%s) c JOIN %s t ON t.id = c.id
		 WHERE t.upvotes <> c.up OR t.downvotes <> c.down`,
		fmt.Sprintf(ledgerCounts, table), table,
	)

	var n int
	if err := db.QueryRowContext(ctx, query, targetType(table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func reconcile(ctx context.Context, db *sql.DB, table string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE %s t SET upvotes = c.up, downvotes = c.down
		 FROM (%s) c
		 WHERE t.id = c.id AND (t.upvotes <> c.up OR t.downvotes <> c.down)`,
		table, fmt.Sprintf(ledgerCounts, table),
	)

	res, err := db.ExecContext(ctx, query, targetType(table))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func targetType(table string) string {
	if table == "posts" {
		return "post"
	}
	return "comment"
}
