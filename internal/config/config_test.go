package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	if got := parseDuration("45s", time.Minute); got != 45*time.Second {
		t.Fatalf("parseDuration(45s) = %v", got)
	}
	if got := parseDuration("not-a-duration", time.Minute); got != time.Minute {
		t.Fatalf("bad input should fall back, got %v", got)
	}
}

func TestParseInt(t *testing.T) {
	if got := parseInt("12", 8); got != 12 {
		t.Fatalf("parseInt(12) = %d", got)
	}
	if got := parseInt("zero", 8); got != 8 {
		t.Fatalf("bad input should fall back, got %d", got)
	}
	if got := parseInt("-3", 8); got != 8 {
		t.Fatalf("non-positive input should fall back, got %d", got)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "pool",
		DBPassword: "secret",
		DBName:     "poolmate_db",
		DBSSLMode:  "require",
	}
	dsn := cfg.DSN()
	for _, part := range []string{
		"host=db.internal", "port=5433", "user=pool",
		"password=secret", "dbname=poolmate_db", "sslmode=require",
	} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("DSN missing %q: %s", part, dsn)
		}
	}
}
