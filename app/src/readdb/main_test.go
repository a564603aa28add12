package main

import (
	"bytes"
	"context"
	"testing"

	"dnsfilter/app/src/server/infra"
	"dnsfilter/app/src/server/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	store := testutil.NewStore(t)
	store.Block("ads.example")
	store.Query("10.0.0.1", "ads.example", "A", "blocked", nil)

	db := infra.New(infra.Options{Path: store.Path, ReadOnly: true})
	require.NoError(t, db.Initialize(context.Background()))
	defer db.Shutdown()

	var buf bytes.Buffer
	require.NoError(t, dump(context.Background(), db, &buf))
	out := buf.String()

	assert.Contains(t, out, "TABLE: blocked (1 rows)")
	assert.Contains(t, out, "TABLE: queries (1 rows)")
	assert.Contains(t, out, "client_ip")
	assert.Contains(t, out, "10.0.0.1")
	assert.Contains(t, out, "NULL")
	assert.NotContains(t, out, "sqlite_sequence")
}

func TestDump_NoTables(t *testing.T) {
	store := testutil.NewStoreWithSchema(t, `PRAGMA user_version = 1;`)
	db := infra.New(infra.Options{Path: store.Path, ReadOnly: true})
	require.NoError(t, db.Initialize(context.Background()))
	defer db.Shutdown()

	var buf bytes.Buffer
	require.NoError(t, dump(context.Background(), db, &buf))
	assert.Contains(t, buf.String(), "No tables found")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"queries"`, quoteIdent("queries"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
