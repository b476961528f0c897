package auditlog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp shapes, tried in order. The first covers ISO-8601
// local date-times with an optional fraction; the second covers lines whose
// seconds were omitted entirely by an older writer.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Reader reconstructs typed events from the free-text log. Nothing is
// indexed or cached: every call scans the whole file top to bottom.
type Reader struct {
	path string
}

// NewReader returns a reader over the log file at path. A missing file
// reads as an empty log.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadAll parses the log line by line, in file order. Lines with an
// unparsable timestamp are dropped entirely; messages with an unrecognized
// shape are kept as KindUnknown events carrying the raw message. This
// asymmetry is deliberate: a line without a timestamp cannot be placed in
// any report, while an odd message still can.
func (r *Reader) ReadAll() ([]Event, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		sep := strings.Index(line, " - ")
		if sep <= 0 {
			continue
		}
		ts, ok := parseTimestamp(strings.TrimSpace(line[:sep]))
		if !ok {
			continue
		}
		ev := parseMessage(strings.TrimSpace(line[sep+3:]))
		ev.Timestamp = ts
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return events, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// messageMatchers are tried in priority order; the first match wins. The
// fallback to KindUnknown lives in parseMessage itself, so no matcher ever
// fails the line.
var messageMatchers = []func(msg string) (Event, bool){
	matchPipeFormat,
	matchLegacyPurchase,
	matchLegacyCreate,
	matchLegacyUpdate,
	matchLegacyDelete,
	matchLegacyBlocked,
}

func parseMessage(msg string) Event {
	for _, match := range messageMatchers {
		if ev, ok := match(msg); ok {
			ev.Message = msg
			return ev
		}
	}
	return Event{Kind: KindUnknown, Message: msg}
}

// matchPipeFormat handles the current encoding: KIND|k1=v1|k2=v2|...
// The kind token is matched case-sensitively; keys are lower-cased.
func matchPipeFormat(msg string) (Event, bool) {
	parts := strings.Split(msg, "|")
	kind := Kind(strings.TrimSpace(parts[0]))
	if !knownKinds[kind] {
		return Event{}, false
	}

	kv := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		eq := strings.Index(part, "=")
		if eq <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(part[:eq]))
		kv[key] = strings.TrimSpace(part[eq+1:])
	}

	ev := Event{
		Kind:     kind,
		Customer: kv["cliente"],
		Book:     kv["livro"],
		Quantity: intField(kv, "qtd"),
	}
	if before, after := intField(kv, "antes"), intField(kv, "depois"); before != nil && after != nil {
		ev.StockBefore, ev.StockAfter = before, after
	}
	return ev, true
}

// Legacy prose patterns carried over from the log format that predates the
// pipe encoding. Old log files still contain these lines.
var (
	legacyPurchaseRe = regexp.MustCompile(`^AÇÃO:\s*Compra\s*\|\s*Livro:\s*'(?P<livro>[^']+)'\s*\|\s*Cliente:\s*(?P<cliente>[^|]+?)\s*\|\s*Qtd:\s*(?P<qtd>\d+)\s*\|\s*Estoque:\s*(?P<antes>\d+)\s*->\s*(?P<depois>\d+)\s*$`)
	legacyCreateRe   = regexp.MustCompile(`^CRIAÇÃO:\s*Livro\s*'(?P<livro>[^']+)'\s*\(id=\d+\),\s*qtd=(?P<qtd>\d+)\)$`)
	legacyUpdateRe   = regexp.MustCompile(`^ATUALIZAÇÃO:\s*Livro\s*id=\d+\s*agora\s*qtd=(?P<qtd>\d+)\s*$`)
	legacyDeleteRe   = regexp.MustCompile(`^EXCLUSÃO:\s*Livro\s*id=\d+\s*removido`)
	legacyBlockedRe  = regexp.MustCompile(`^TENTATIVA\s+EXCLUSÃO\s+BLOQUEADA:`)
)

func matchLegacyPurchase(msg string) (Event, bool) {
	m := legacyPurchaseRe.FindStringSubmatch(msg)
	if m == nil {
		return Event{}, false
	}
	ev := Event{
		Kind:     KindPurchase,
		Book:     strings.TrimSpace(m[legacyPurchaseRe.SubexpIndex("livro")]),
		Customer: strings.TrimSpace(m[legacyPurchaseRe.SubexpIndex("cliente")]),
		Quantity: atoiPtr(m[legacyPurchaseRe.SubexpIndex("qtd")]),
	}
	ev.StockBefore = atoiPtr(m[legacyPurchaseRe.SubexpIndex("antes")])
	ev.StockAfter = atoiPtr(m[legacyPurchaseRe.SubexpIndex("depois")])
	return ev, true
}

func matchLegacyCreate(msg string) (Event, bool) {
	m := legacyCreateRe.FindStringSubmatch(msg)
	if m == nil {
		return Event{}, false
	}
	return Event{
		Kind:     KindCreate,
		Book:     strings.TrimSpace(m[legacyCreateRe.SubexpIndex("livro")]),
		Quantity: atoiPtr(m[legacyCreateRe.SubexpIndex("qtd")]),
	}, true
}

func matchLegacyUpdate(msg string) (Event, bool) {
	m := legacyUpdateRe.FindStringSubmatch(msg)
	if m == nil {
		return Event{}, false
	}
	return Event{
		Kind:     KindUpdate,
		Quantity: atoiPtr(m[legacyUpdateRe.SubexpIndex("qtd")]),
	}, true
}

func matchLegacyDelete(msg string) (Event, bool) {
	if !legacyDeleteRe.MatchString(msg) {
		return Event{}, false
	}
	return Event{Kind: KindDelete}, true
}

func matchLegacyBlocked(msg string) (Event, bool) {
	if !legacyBlockedRe.MatchString(msg) {
		return Event{}, false
	}
	return Event{Kind: KindBlocked}, true
}

func intField(kv map[string]string, key string) *int {
	v, ok := kv[key]
	if !ok {
		return nil
	}
	return atoiPtr(v)
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
