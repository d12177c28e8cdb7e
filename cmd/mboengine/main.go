// Command mboengine is the ingest + fan-out process: it connects to an MBO
// replay source, reconstructs the order book, and publishes snapshots to
// the push server, the persistent writer, and the event log. Grounded on
// original_source/mbo-stream/src/tcp_main_ws.cpp's main().
package main

import (
	"context"
	"os"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/alert"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/config"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/engine"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/feedlog"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/helper"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/pgwriter"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/pushserver"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/snapshot"
)

func main() {
	cfg, ok := config.Parse(os.Args)
	if !ok {
		os.Exit(1)
	}

	alertSink, err := alert.Load(cfg.AlertConfPath)
	if err != nil {
		helper.Error("alert config load failed: %v", err)
	}

	if cfg.FeedEnabled {
		helper.Info("feed: enabled, path=%s", cfg.FeedPath)
	} else {
		helper.Info("feed: disabled (set FEED_ENABLED=1)")
	}

	store := snapshot.New()

	pushSrv := pushserver.New(store, "", cfg.PushMs, alertSink)
	if err := pushSrv.Start(cfg.PushPort); err != nil {
		// FatalConfig: alert already fired inside Start; process exits.
		helper.Fatal("push server could not start: %v", err)
	}

	var pg *pgwriter.Writer
	if cfg.PgConninfo != "" {
		w, err := pgwriter.Open(context.Background(), cfg.PgConninfo, alertSink)
		if err != nil {
			helper.Error("pg writer disabled (connect failed): %v", err)
		} else {
			pg = w
			helper.Info("pg writer enabled")
		}
	} else {
		helper.Info("pg writer disabled (set PG_CONNINFO)")
	}

	var bench *feedlog.Writer
	if cfg.BenchLogPath != "" {
		bw, err := feedlog.Open(cfg.BenchLogPath)
		if err != nil {
			helper.Error("bench log disabled (open failed): %v", err)
		} else {
			bench = bw
			helper.Info("bench: logging to %s", bw.Path())
		}
	}

	d := &engine.Driver{
		Cfg:     cfg,
		Store:   store,
		Pg:      pg,
		Bench:   bench,
		Alerter: alertSink,
	}
	d.Run()
}
