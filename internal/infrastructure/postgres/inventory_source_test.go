package postgres

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
)

func TestRecordFromRow_MapeaColumnas(t *testing.T) {
	cols := []string{"description", "item_code", "qty_on_hand", "retail_price", "last_count_date", "notes"}
	vals := []any{
		"Large Lamp",
		"LAMP-001",
		int32(10),
		decimal.RequireFromString("40.50"),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		nil,
	}
	rec := recordFromRow(cols, vals, 7)

	assert.Equal(t, entity.SourceInventory, rec.Source)
	assert.Equal(t, 7, rec.Line)
	assert.Equal(t, "Large Lamp", rec.Get(entity.FieldName))
	assert.Equal(t, "LAMP-001", rec.Get(entity.FieldItemCode))
	assert.Equal(t, "10", rec.Get(entity.FieldQuantity))
	assert.Equal(t, "40.5", rec.Get(entity.FieldPrice))
	assert.Equal(t, "2024-03-01", rec.Get(entity.FieldLastCountDate))
	assert.False(t, rec.Has(entity.FieldFirstSeen))
	assert.False(t, rec.Has(entity.FieldNotes))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "", formatValue(decimal.NullDecimal{}))
	assert.Equal(t, "2.5", formatValue(2.5))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
}

func TestClassifyQueryError(t *testing.T) {
	err := classifyQueryError(&pgconn.PgError{Code: "42P01", Message: `relation "inventario" does not exist`})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	other := errors.New("connection refused")
	assert.Same(t, other, classifyQueryError(other))
}

func TestResolveIPv4(t *testing.T) {
	ctx := context.Background()

	ip, err := resolveIPv4(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = resolveIPv4(ctx, "::1")
	assert.ErrorIs(t, err, errNoIPv4)

	orig := lookupIP
	t.Cleanup(func() { lookupIP = orig })
	lookupIP = func(_ context.Context, network, host string) ([]net.IP, error) {
		assert.Equal(t, "ip4", network)
		return []net.IP{net.ParseIP("192.168.1.20")}, nil
	}
	ip, err = resolveIPv4(ctx, "db.interno")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", ip)
}

// ── fakes ───────────────────────────────────────────────────────────────────

type fakeRows struct {
	pgx.Rows
	cols []string
	data [][]any
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.i-1], nil }

type fakeQuerier struct {
	rows    *fakeRows
	err     error
	queries []string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sql)
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

type fakeTx struct {
	pgx.Tx
	q          *fakeQuerier
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.q.Query(ctx, sql, args...)
}
func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	return b.tx, nil
}

func inventoryRows() *fakeRows {
	return &fakeRows{
		cols: []string{"name", "qty_on_hand", "retail_price"},
		data: [][]any{
			{"Desk Lamp", int64(10), decimal.RequireFromString("25.00")},
			{"Coffee Mug", int64(0), decimal.RequireFromString("12.50")},
		},
	}
}

// ── Extract ─────────────────────────────────────────────────────────────────

func TestInventorySource_ExtraeFilas(t *testing.T) {
	q := &fakeQuerier{rows: inventoryRows()}
	src := NewInventorySource(q, "SELECT * FROM inventario")

	recs, err := src.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Desk Lamp", recs[0].Get(entity.FieldName))
	assert.Equal(t, "0", recs[1].Get(entity.FieldQuantity))
	assert.Equal(t, 2, recs[1].Line)
	assert.Equal(t, []string{"SELECT * FROM inventario"}, q.queries)
}

func TestInventorySource_TablaInexistenteEsErrorDeConfiguracion(t *testing.T) {
	q := &fakeQuerier{err: &pgconn.PgError{Code: "42P01"}}
	_, err := NewInventorySource(q, "SELECT * FROM nope").Extract(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestInventorySource_SnapshotDeSoloLectura(t *testing.T) {
	tx := &fakeTx{q: &fakeQuerier{rows: inventoryRows()}}
	b := &fakeBeginner{tx: tx}

	recs, err := NewInventorySource(nil, "SELECT 1").
		WithSnapshot(NewTxRunner(b)).
		Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, pgx.ReadOnly, b.opts.AccessMode)
	assert.Equal(t, pgx.RepeatableRead, b.opts.IsoLevel)
	assert.True(t, tx.committed)
}
