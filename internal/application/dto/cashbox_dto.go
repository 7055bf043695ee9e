package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Counts conteo por denominación en centavos: {"5000": 2, "1000": 1}.
type Counts map[int64]int64

// ── Requests ─────────────────────────────────────────────────────────────────

// LoginRequest sin password entra como dealer; con la contraseña de administrador, como admin.
type LoginRequest struct {
	Staff    string `json:"staff" validate:"required,max=64"`
	Password string `json:"password" validate:"max=128"`
}

// RefsRequest referencias opcionales de trazabilidad.
type RefsRequest struct {
	PlayerRef      string `json:"player_ref" validate:"max=128"`
	TransactionRef string `json:"transaction_ref" validate:"max=128"`
	Note           string `json:"note" validate:"max=500"`
}

// PlanRequest plan sobre un universo y filtro explícitos.
type PlanRequest struct {
	Universe    string   `json:"universe" validate:"required,oneof=CURRENCY CHIP"`
	Reasons     []string `json:"reasons" validate:"required,min=1,dive,oneof=BUYIN CASHOUT SALE FLOAT_ADD LOST_CHIP EXCHANGE"`
	TargetCents int64    `json:"target_cents" validate:"gte=0"`
}

// CashOutRequest fichas entregadas y consumo a descontar.
type CashOutRequest struct {
	RefsRequest
	Chips     Counts `json:"chips" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
	FoodCents int64  `json:"food_cents" validate:"gte=0"`
}

// CashOutConfirmRequest cobro con el plan que aceptó el operador.
type CashOutConfirmRequest struct {
	CashOutRequest
	Plan Counts `json:"plan" validate:"dive,keys,gt=0,endkeys,gte=0"`
}

// BuyInRequest billetes entregados y monto en fichas.
type BuyInRequest struct {
	RefsRequest
	Tendered   Counts `json:"tendered" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
	ChipsCents int64  `json:"chips_cents" validate:"gt=0"`
}

// BuyInConfirmRequest compra de fichas con el vuelto aceptado.
type BuyInConfirmRequest struct {
	BuyInRequest
	Change Counts `json:"change" validate:"dive,keys,gt=0,endkeys,gte=0"`
}

// SaleRequest venta pagada con efectivo y/o fichas.
type SaleRequest struct {
	RefsRequest
	TotalCents  int64  `json:"total_cents" validate:"gt=0"`
	Cash        Counts `json:"cash" validate:"required_without=Chips,dive,keys,gt=0,endkeys,gte=0"`
	Chips       Counts `json:"chips" validate:"dive,keys,gt=0,endkeys,gte=0"`
	Description string `json:"description" validate:"max=200"`
}

// SaleConfirmRequest venta con el vuelto aceptado.
type SaleConfirmRequest struct {
	SaleRequest
	Change Counts `json:"change" validate:"dive,keys,gt=0,endkeys,gte=0"`
}

// FloatRequest billetes agregados al float.
type FloatRequest struct {
	RefsRequest
	Counts Counts `json:"counts" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
}

// LostChipsRequest fichas encontradas en mesa.
type LostChipsRequest struct {
	RefsRequest
	Chips Counts `json:"chips" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
}

// ExchangeRequest billetes que salen y billetes que entran, por el mismo total.
type ExchangeRequest struct {
	RefsRequest
	Give    Counts `json:"give" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
	Receive Counts `json:"receive" validate:"required,min=1,dive,keys,gt=0,endkeys,gte=0"`
}

// ReverseRequest lote o referencia de transacción, nunca ambos.
type ReverseRequest struct {
	BatchID        string `json:"batch_id" validate:"required_without=TransactionRef,max=64"`
	TransactionRef string `json:"transaction_ref" validate:"max=128"`
	Password       string `json:"password" validate:"required"`
	HardDelete     bool   `json:"hard_delete"`
	Note           string `json:"note" validate:"max=500"`
}

// ChangePasswordRequest cambio de la contraseña de administrador.
type ChangePasswordRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next" validate:"required,min=4,max=128"`
}

// AvailabilityRequest query string de GET /cashbox/availability.
type AvailabilityRequest struct {
	Universe string `query:"universe" validate:"required"`
	Reasons  string `query:"reasons" validate:"required"`
}

// ── Responses ────────────────────────────────────────────────────────────────

// LoginResponse token emitido.
type LoginResponse struct {
	Token string `json:"token"`
	Staff string `json:"staff"`
	Role  string `json:"role"`
}

// MoneyResponse monto en centavos, en unidades mayores y formateado.
type MoneyResponse struct {
	Cents     int64           `json:"cents"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// DenominationCountResponse una línea de un conteo.
type DenominationCountResponse struct {
	DenominationCents int64           `json:"denomination_cents"`
	Denomination      decimal.Decimal `json:"denomination"`
	Count             int64           `json:"count"`
	Value             MoneyResponse   `json:"value"`
}

// SnapshotResponse disponibilidad por denominación.
type SnapshotResponse struct {
	Universe string                      `json:"universe"`
	Reasons  []string                    `json:"reasons"`
	Counts   []DenominationCountResponse `json:"counts"`
	Total    MoneyResponse               `json:"total"`
}

// PlanResponse plan propuesto; PlanCounts se reenvía tal cual al confirmar.
type PlanResponse struct {
	Target     MoneyResponse               `json:"target"`
	Plan       []DenominationCountResponse `json:"plan"`
	PlanCounts Counts                      `json:"plan_counts"`
	Available  SnapshotResponse            `json:"available"`
}

// CashOutQuoteResponse plan de pago de un cobro.
type CashOutQuoteResponse struct {
	ChipsTotal MoneyResponse `json:"chips_total"`
	Food       MoneyResponse `json:"food"`
	PlanResponse
}

// BuyInQuoteResponse vuelto de una compra de fichas.
type BuyInQuoteResponse struct {
	Tendered MoneyResponse `json:"tendered"`
	Chips    MoneyResponse `json:"chips"`
	PlanResponse
}

// SaleQuoteResponse vuelto de una venta.
type SaleQuoteResponse struct {
	Total MoneyResponse `json:"total"`
	Paid  MoneyResponse `json:"paid"`
	PlanResponse
}

// BatchCreatedResponse lote escrito.
type BatchCreatedResponse struct {
	BatchID string `json:"batch_id"`
}

// MovementResponse fila del ledger.
type MovementResponse struct {
	ID                string    `json:"id"`
	Universe          string    `json:"universe"`
	DenominationCents int64     `json:"denomination_cents"`
	Delta             int64     `json:"delta"`
	Reason            string    `json:"reason"`
	PlayerRef         string    `json:"player_ref,omitempty"`
	TransactionRef    string    `json:"transaction_ref,omitempty"`
	ReversalOf        string    `json:"reversal_of,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// AuditEntryResponse entrada de bitácora.
type AuditEntryResponse struct {
	ID             string        `json:"id"`
	BatchID        string        `json:"batch_id"`
	Type           string        `json:"type"`
	Amount         MoneyResponse `json:"amount"`
	Note           string        `json:"note,omitempty"`
	Staff          string        `json:"staff,omitempty"`
	PlayerRef      string        `json:"player_ref,omitempty"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	ReversalOf     string        `json:"reversal_of,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// BatchDetailResponse desglose de un lote.
type BatchDetailResponse struct {
	Audit     *AuditEntryResponse `json:"audit,omitempty"`
	Movements []MovementResponse  `json:"movements"`
	Reversed  bool                `json:"reversed"`
}

// ActivityResponse bitácora paginada.
type ActivityResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// SummaryResponse vista de caja.
type SummaryResponse struct {
	Cash          SnapshotResponse            `json:"cash"`
	ChipsReceived SnapshotResponse            `json:"chips_received"`
	Tips          SnapshotResponse            `json:"tips"`
	Float         []DenominationCountResponse `json:"float"`
	FloatTotal    MoneyResponse               `json:"float_total"`
	SalesTotal    MoneyResponse               `json:"sales_total"`
}
