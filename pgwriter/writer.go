// Package pgwriter is the bounded-queue asynchronous writer that upserts
// top-of-book rows into Postgres, grounded on
// original_source/mbo-stream/{include,src}/mbo/pg_writer.hpp|.cpp. The
// engine loop never blocks on it: enqueue is non-blocking and lossy under
// load (§4.6's backpressure policy), and a lost database connection is
// fatal to the writer goroutine only, never to the engine or push server.
package pgwriter

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/book"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/helper"
)

// DefaultCapacity is the design-target queue depth from §4.6.
const DefaultCapacity = 20000

const upsertSQL = `
INSERT INTO snapshots
	(ts, symbol, best_bid_px, best_bid_sz, best_ask_px, best_ask_sz, mid, spread)
VALUES
	(to_timestamp($1 / 1e6), $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (symbol, ts) DO NOTHING`

// Alerter receives a fire-and-forget notification; it is satisfied by
// *alert.Sink, but declared locally so pgwriter does not need to import it.
type Alerter interface {
	Notify(message string)
}

// Writer owns a Postgres connection pool and a single draining worker
// goroutine. Enqueue is safe to call from the ingest goroutine at any time,
// including after the worker has exited on a fatal error.
type Writer struct {
	pool    *pgxpool.Pool
	queue   *boundedQueue
	alerter Alerter
	done    chan struct{}
}

// Open connects to conninfo and starts the draining worker. It returns an
// error only for a malformed conninfo string or an immediately-failed
// connection attempt; a connection that is lost later is handled by the
// worker per §4.6's failure policy, not by returning an error here.
func Open(ctx context.Context, conninfo string, alerter Alerter) (*Writer, error) {
	pool, err := pgxpool.New(ctx, conninfo)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		pool:    pool,
		queue:   newBoundedQueue(DefaultCapacity),
		alerter: alerter,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Enqueue queues one top-of-book write. Never blocks; drops the oldest
// queued item if the queue is already at capacity.
func (w *Writer) Enqueue(tsUs int64, symbol string, tob book.TopOfBook) {
	w.queue.Enqueue(snapshotItem{tsUs: tsUs, symbol: symbol, tob: tob})
}

// QueueLen reports the current queue depth (used by tests and diagnostics).
func (w *Writer) QueueLen() int { return w.queue.Len() }

// Close stops the draining worker and closes the pool.
func (w *Writer) Close() {
	w.queue.Close()
	<-w.done
	w.pool.Close()
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		item, ok := w.queue.Dequeue()
		if !ok {
			return
		}

		if err := w.writeOne(item); err != nil {
			helper.Error("pg upsert failed: %v", err)
			if isFatalConnErr(err) {
				if w.alerter != nil {
					w.alerter.Notify("persistent writer lost its database connection; worker exiting")
				}
				helper.Error("pg connection lost, writer goroutine exiting: %v", err)
				return
			}
		}
	}
}

func (w *Writer) writeOne(item snapshotItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bidPx, bidSz := nullables(item.tob.HasBid, item.tob.BidPx.InexactFloat64(), item.tob.BidSz)
	askPx, askSz := nullables(item.tob.HasAsk, item.tob.AskPx.InexactFloat64(), item.tob.AskSz)

	_, err := w.pool.Exec(ctx, upsertSQL,
		item.tsUs,
		item.symbol,
		bidPx, bidSz,
		askPx, askSz,
		item.tob.Mid.InexactFloat64(),
		item.tob.Spread.InexactFloat64(),
	)
	return err
}

func nullables(present bool, px float64, sz int64) (sql.NullFloat64, sql.NullInt64) {
	if !present {
		return sql.NullFloat64{}, sql.NullInt64{}
	}
	return sql.NullFloat64{Float64: px, Valid: true}, sql.NullInt64{Int64: sz, Valid: true}
}

// isFatalConnErr reports whether err indicates the connection itself is
// gone (as opposed to a one-off statement failure); helper.Fatal's
// process-ending behavior is reserved for FatalConfig in the push server,
// so here we only mark the worker goroutine done rather than exit the
// process, matching §4.6's "fatal condition for the worker only".
func isFatalConnErr(err error) bool {
	return err != nil && (err == context.DeadlineExceeded ||
		err.Error() != "" && (containsAny(err.Error(), []string{
			"closed pool",
			"connection refused",
			"connection reset",
			"broken pipe",
			"EOF",
		})))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}
