package auditlog

import "time"

// Kind identifies the type of an audit event. The values are the exact
// tokens written to the log file, so they double as the wire format.
type Kind string

const (
	KindPurchase       Kind = "COMPRA"
	KindCreate         Kind = "CRIACAO"
	KindUpdate         Kind = "ATUALIZACAO"
	KindDelete         Kind = "EXCLUSAO"
	KindBlocked        Kind = "BLOQUEADA"
	KindCustomerCreate Kind = "CRIACAO_CLIENTE"
	KindCustomerUpdate Kind = "ATUALIZACAO_CLIENTE"
	KindCustomerDelete Kind = "EXCLUSAO_CLIENTE"

	// KindUnknown is the fallback for log lines whose message shape is not
	// recognized. Such lines are kept, never dropped.
	KindUnknown Kind = "DESCONHECIDO"
)

// knownKinds are the message prefixes accepted by the structured parser.
var knownKinds = map[Kind]bool{
	KindPurchase:       true,
	KindCreate:         true,
	KindUpdate:         true,
	KindDelete:         true,
	KindBlocked:        true,
	KindCustomerCreate: true,
	KindCustomerUpdate: true,
	KindCustomerDelete: true,
}

// Event is a typed view of one log line, re-derived from text on every
// read. It has no identity beyond its position in the log. Optional fields
// are nil when the line did not carry them.
type Event struct {
	Timestamp   time.Time
	Kind        Kind
	Customer    string
	Book        string
	Quantity    *int
	StockBefore *int
	StockAfter  *int

	// Message is the raw message part of the line, kept verbatim so that
	// unknown shapes remain diagnosable.
	Message string
}
