package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestRecordAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "actions.log")
	l := NewLogger(path)
	l.now = fixedClock(
		time.Date(2024, 3, 10, 14, 30, 5, 123456000, time.Local),
		time.Date(2024, 3, 10, 14, 31, 0, 42000, time.Local),
	)

	if err := l.Record("CRIACAO|id=1|livro=1984|autor=George Orwell|qtd=5|preco=49.90"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Record("COMPRA|cliente=Ana|livro=1984|qtd=2|antes=5|depois=3"); err != nil {
		t.Fatalf("record: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "append", data)
}

func TestRecordNeverRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l := NewLogger(path)

	for i := 0; i < 3; i++ {
		if err := l.Record("EXCLUSAO|id=1|livro=X"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 3 {
		t.Fatalf("want 3 lines, got %d: %q", n, string(data))
	}
}

func TestWriterOutputIsReadableBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l := NewLogger(path)
	if err := l.Record("COMPRA|cliente=Ana|livro=Dune|qtd=1|antes=2|depois=1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := NewReader(path).ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("want 1 event, got %d", len(events))
	}
	if events[0].Kind != KindPurchase || events[0].Customer != "Ana" {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Fatalf("timestamp not preserved: %v", events[0].Timestamp)
	}
}
