// Command readdb prints every table of the DNS filter database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"dnsfilter/app/src/server/infra"
	"dnsfilter/app/src/server/logging"

	"go.uber.org/zap"
)

func main() {
	path := flag.String("db", "database/dns_filter.db", "Path to the sqlite database")
	flag.Parse()

	logger := logging.NewDevelopmentLogger()
	defer logger.Sync()

	db := infra.New(infra.Options{Path: *path, ReadOnly: true})
	if err := db.Initialize(context.Background()); err != nil {
		logger.Error("open database failed", zap.String("path", *path), zap.Error(err))
		os.Exit(1)
	}
	defer db.Shutdown()

	if err := dump(context.Background(), db, os.Stdout); err != nil {
		logger.Error("dump database failed", zap.Error(err))
		db.Shutdown()
		os.Exit(1)
	}
}

// quoteIdent quotes a table name for use in SQL text. Identifiers cannot be bound.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func dump(ctx context.Context, db *infra.DB, w io.Writer) error {
	tables, err := db.FetchAll(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Database: %s\n", db.Path())
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found in the database.")
		return nil
	}

	for _, t := range tables {
		name := t.String("name")
		cols, err := db.FetchAll(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, name)
		if err != nil {
			return err
		}
		rows, err := db.FetchAll(ctx, "SELECT * FROM "+quoteIdent(name))
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nTABLE: %s (%d rows)\n", name, len(rows))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = c.String("name")
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, r := range rows {
			vals := make([]string, len(header))
			for i, h := range header {
				if r[h] == nil {
					vals[i] = "NULL"
					continue
				}
				vals[i] = r.String(h)
			}
			fmt.Fprintln(tw, strings.Join(vals, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
