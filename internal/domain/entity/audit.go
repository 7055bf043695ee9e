package entity

import "time"

// EventType tipo de evento de negocio registrado en la bitácora.
type EventType string

const (
	EventBuyIn       EventType = "BUYIN"
	EventCashOut     EventType = "CASHOUT"
	EventCashOutSale EventType = "CASHOUT_SALE" // cobro con consumo descontado
	EventSale        EventType = "SALE"
	EventFloatAdd    EventType = "FLOAT_ADD"
	EventTip         EventType = "TIP"
	EventExchange    EventType = "EXCHANGE"
	EventReversal    EventType = "REVERSAL"
)

// AuditEntry una fila de bitácora por lote.
type AuditEntry struct {
	ID             string
	BatchID        BatchID
	Type           EventType
	Amount         Amount
	Note           string
	Staff          string
	PlayerRef      string
	TransactionRef string
	ReversalOf     BatchID
	CreatedAt      time.Time
}

// SalesEventTypes tipos que suman al total de ventas de la sesión.
func SalesEventTypes() []EventType {
	return []EventType{EventSale, EventCashOutSale}
}
