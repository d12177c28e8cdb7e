package config

import (
	"os"
	"testing"
)

func TestParseDefaultsWhenOptionalArgsOmitted(t *testing.T) {
	cfg, ok := Parse([]string{"mboengine", "127.0.0.1", "9000", "8080"})
	if !ok {
		t.Fatalf("expected ok")
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 9000 || cfg.PushPort != 8080 {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.Depth != 5 || cfg.SnapshotEvery != 200 || cfg.MaxMsgs != -1 || cfg.PushMs != 50 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseOverridesPositionalDefaults(t *testing.T) {
	cfg, ok := Parse([]string{"mboengine", "host", "1", "2", "50", "100", "10000", "25"})
	if !ok {
		t.Fatalf("expected ok")
	}
	if cfg.Depth != 50 || cfg.SnapshotEvery != 100 || cfg.MaxMsgs != 10000 || cfg.PushMs != 25 {
		t.Fatalf("got %+v", cfg)
	}
}

func TestParseTooFewArgsReturnsNotOk(t *testing.T) {
	_, ok := Parse([]string{"mboengine", "host"})
	if ok {
		t.Fatalf("expected not ok with too few positional args")
	}
}

func TestParseFeedEnabledTruthy(t *testing.T) {
	os.Setenv("FEED_ENABLED", "yes")
	defer os.Unsetenv("FEED_ENABLED")

	cfg, _ := Parse([]string{"mboengine", "h", "1", "2"})
	if !cfg.FeedEnabled {
		t.Fatalf("expected FeedEnabled true for FEED_ENABLED=yes")
	}
}

func TestParseFeedEnabledFalsyByDefault(t *testing.T) {
	os.Unsetenv("FEED_ENABLED")

	cfg, _ := Parse([]string{"mboengine", "h", "1", "2"})
	if cfg.FeedEnabled {
		t.Fatalf("expected FeedEnabled false by default")
	}
}

func TestParsePgConninfoFromEnv(t *testing.T) {
	os.Setenv("PG_CONNINFO", "host=127.0.0.1 dbname=batonic")
	defer os.Unsetenv("PG_CONNINFO")

	cfg, _ := Parse([]string{"mboengine", "h", "1", "2"})
	if cfg.PgConninfo != "host=127.0.0.1 dbname=batonic" {
		t.Fatalf("got %q", cfg.PgConninfo)
	}
}
