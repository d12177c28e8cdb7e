// Package engine is the driver (C9) that ties the line framer, order
// book, histograms, and the three snapshot-fan-out destinations
// together, grounded on
// original_source/mbo-stream/src/tcp_main_ws.cpp's run_one_replay_session
// and its surrounding main().
package engine

import (
	"bufio"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/book"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/config"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/feedlog"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/helper"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/histogram"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/mboevent"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/pgwriter"
	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/snapshot"
)

const readBufSize = 1 << 20

// Alerter receives a fire-and-forget notification; satisfied by *alert.Sink.
type Alerter interface {
	Notify(message string)
}

// Driver owns the ingest loop and the shared infrastructure it publishes
// into: the snapshot store, the optional persistent writer, and the
// optional feed/bench log writers.
type Driver struct {
	Cfg     config.Config
	Store   *snapshot.Store
	Pg      *pgwriter.Writer // nil when disabled
	Bench   *feedlog.Writer  // nil when disabled
	Alerter Alerter          // nil when disabled
}

// Run connects to the ingress forever, running one session per connection
// and retrying with a 2s delay on failure. It never returns under normal
// operation; callers typically run it on a dedicated goroutine or as main.
func (d *Driver) Run() {
	for {
		helper.Info("waiting for feed %s:%d ...", d.Cfg.Host, d.Cfg.Port)
		if err := d.runOneSession(); err != nil {
			helper.Error("session failed: %v (retry in 2000ms)", err)
			if d.Alerter != nil {
				d.Alerter.Notify("ingress session failed, retrying: " + err.Error())
			}
			time.Sleep(2 * time.Second)
		}
	}
}

func (d *Driver) runOneSession() error {
	conn, err := net.Dial("tcp", net.JoinHostPort(d.Cfg.Host, strconv.Itoa(d.Cfg.Port)))
	if err != nil {
		return err
	}
	defer conn.Close()
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	helper.Info("connected to %s:%d", d.Cfg.Host, d.Cfg.Port)

	var feedWriter *feedlog.Writer
	if d.Cfg.FeedEnabled && d.Cfg.FeedPath != "" {
		fw, err := feedlog.Open(d.Cfg.FeedPath)
		if err != nil {
			helper.Error("feed log disabled (open failed): %v", err)
		} else {
			feedWriter = fw
			helper.Info("feed: appending snapshots to %s", fw.Path())
			defer feedWriter.Close()
		}
	}

	sess := newSessionState(d.Cfg)
	framer := mboevent.NewFramer()
	reader := bufio.NewReaderSize(conn, readBufSize)
	buf := make([]byte, readBufSize)

	start := time.Now()

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			sess.bytesTotal += uint64(n)
			for _, line := range framer.Feed(buf[:n]) {
				d.handleLine(line, sess, feedWriter)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			if tail := framer.Flush(); tail != "" {
				d.handleLine(tail, sess, feedWriter)
			}
			d.finishSession(sess, feedWriter, start)
			return readErr
		}
	}

	if tail := framer.Flush(); tail != "" {
		d.handleLine(tail, sess, feedWriter)
	}

	d.finishSession(sess, feedWriter, start)
	return nil
}

// sessionState is the per-connection state reset at the start of each
// ingest session (mirrors run_one_replay_session's locals).
type sessionState struct {
	cfg config.Config

	bk        *book.Book
	hasSymbol bool
	symbol    string

	applyHist *histogram.Pow2
	snapHist  *histogram.Pow2

	processed  int64
	parsedOK   int64
	linesTotal uint64
	bytesTotal uint64
	lastTsUs   int64
}

func newSessionState(cfg config.Config) *sessionState {
	return &sessionState{
		cfg:       cfg,
		bk:        book.New(""),
		applyHist: histogram.New(),
		snapHist:  histogram.New(),
	}
}

func (d *Driver) handleLine(line string, s *sessionState, feedWriter *feedlog.Writer) {
	if s.cfg.MaxMsgs >= 0 && s.processed >= s.cfg.MaxMsgs {
		s.linesTotal++
		return
	}

	e, ok := mboevent.ParseLine(line, mboevent.DefaultTickScale)
	if !ok {
		if line != "" {
			s.linesTotal++
		}
		return
	}
	s.linesTotal++
	s.parsedOK++

	if e.TsEvent != "" {
		if us := mboevent.EventTimeToMicros(e.TsEvent); us > 0 {
			s.lastTsUs = us
		}
	}

	if !s.hasSymbol && e.Symbol != "" {
		s.symbol = e.Symbol
		s.bk = book.New(e.Symbol)
		s.hasSymbol = true
	}

	t0 := time.Now()
	s.bk.Apply(e)
	s.applyHist.Add(uint64(time.Since(t0).Nanoseconds()))

	s.processed++

	if s.cfg.SnapshotEvery > 0 && s.processed%s.cfg.SnapshotEvery == 0 {
		d.fanOut(s, feedWriter)
		helper.Info("%s", s.bk.ToPrettyBBO())
	}
}

// fanOut performs the snapshot fan-out (serialize once, publish to all
// three destinations), timed as one unit in snapHist.
func (d *Driver) fanOut(s *sessionState, feedWriter *feedlog.Writer) {
	t0 := time.Now()

	json := s.bk.ToJSON(s.cfg.Depth)
	d.Store.Publish(s.symbol, json)

	if d.Pg != nil && s.symbol != "" && s.lastTsUs > 0 {
		d.Pg.Enqueue(s.lastTsUs, s.symbol, s.bk.TopOfBook())
	}

	if feedWriter != nil && s.symbol != "" && s.lastTsUs > 0 {
		feedWriter.WriteFeed(feedlog.FeedLine{
			TsUs:      s.lastTsUs,
			Symbol:    s.symbol,
			Processed: s.processed,
			Depth:     s.cfg.Depth,
			Book:      json,
		})
	}

	s.snapHist.Add(uint64(time.Since(t0).Nanoseconds()))
}

func (d *Driver) finishSession(s *sessionState, feedWriter *feedlog.Writer, start time.Time) {
	if s.processed > 0 && (s.cfg.SnapshotEvery <= 0 || s.processed%s.cfg.SnapshotEvery != 0) {
		d.fanOut(s, feedWriter)
		helper.Info("[final] forced snapshot flush (remainder)")
	}

	helper.Info(s.bk.ToPrettyBBO())

	fullJSON := s.bk.ToJSON(1_000_000)
	writeFinalBooks(d.Cfg, fullJSON, s.symbol)

	if feedWriter != nil {
		feedWriter.Flush()
	}

	secs := time.Since(start).Seconds()
	mps := 0.0
	if secs > 0 {
		mps = float64(s.processed) / secs
	}

	applyP50, applyP95, applyP99 := s.applyHist.Percentile(0.50), s.applyHist.Percentile(0.95), s.applyHist.Percentile(0.99)
	snapP50, snapP95, snapP99 := s.snapHist.Percentile(0.50), s.snapHist.Percentile(0.95), s.snapHist.Percentile(0.99)

	helper.Info("=== session stats === bytes=%d lines=%d processed=%d (parsed_ok=%d) elapsed_s=%.3f throughput_msgs_per_s=%.1f",
		s.bytesTotal, s.linesTotal, s.processed, s.parsedOK, secs, mps)

	if d.Bench != nil {
		d.Bench.WriteBench(feedlog.BenchLine{
			TsWallUs:           time.Now().UnixMicro(),
			Host:               d.Cfg.Host,
			Port:               d.Cfg.Port,
			Depth:              d.Cfg.Depth,
			SnapshotEvery:      d.Cfg.SnapshotEvery,
			FeedEnabled:        d.Cfg.FeedEnabled,
			PgEnabled:          d.Pg != nil,
			Processed:          s.processed,
			ElapsedS:           secs,
			ThroughputMsgsPerS: mps,
			ApplyP50Us:         nsToUs(applyP50),
			ApplyP95Us:         nsToUs(applyP95),
			ApplyP99Us:         nsToUs(applyP99),
			SnapP50Ms:          nsToMs(snapP50),
			SnapP95Ms:          nsToMs(snapP95),
			SnapP99Ms:          nsToMs(snapP99),
		})
		d.Bench.Flush()
	}

	helper.Info("session done, back to waiting...")
}

func nsToUs(ns uint64) float64 { return float64(ns) / 1000.0 }
func nsToMs(ns uint64) float64 { return float64(ns) / 1e6 }

// writeFinalBooks dumps the full-depth book twice: a generic
// final_book.json and a symbol-suffixed final_book_<symbol>.json. The
// original searches upward for a sibling frontend/ directory; this repo
// has none, so the destination is derived from the feed/bench log paths'
// directory (falling back to ./out), a deliberate adaptation documented
// in SPEC_FULL.md.
func writeFinalBooks(cfg config.Config, bookJSON, symbol string) {
	dir := finalBooksDir(cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		helper.Error("final book dump: mkdir failed: %v", err)
		return
	}

	writeFileAtomic(filepath.Join(dir, "final_book.json"), bookJSON)
	if symbol != "" {
		writeFileAtomic(filepath.Join(dir, "final_book_"+symbol+".json"), bookJSON)
	}
}

func finalBooksDir(cfg config.Config) string {
	if cfg.FeedPath != "" {
		return filepath.Dir(cfg.FeedPath)
	}
	if cfg.BenchLogPath != "" {
		return filepath.Dir(cfg.BenchLogPath)
	}
	return "./out"
}

func writeFileAtomic(path, data string) {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		helper.Error("final book dump: write failed for %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		helper.Error("final book dump: rename failed for %s: %v", path, err)
		os.Remove(tmp)
		return
	}
	helper.Info("[final] wrote %s (%d bytes)", path, len(data))
}
