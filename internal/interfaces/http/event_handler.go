package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/dto"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// EventHandler eventos que escriben lotes: cobros, compras de fichas, ventas, float,
// fichas perdidas, cambios y reversas. Los que pagan tienen /quote para mostrar el plan.
type EventHandler struct {
	svc *cashbox.Service
	out presenter
}

// NewEventHandler construye el handler.
func NewEventHandler(svc *cashbox.Service, money MoneyFormatter) *EventHandler {
	return &EventHandler{svc: svc, out: presenter{money: money}}
}

func batchCreated(c *fiber.Ctx, id entity.BatchID) error {
	return c.Status(fiber.StatusCreated).JSON(dto.BatchCreatedResponse{BatchID: string(id)})
}

func cashOutInput(in dto.CashOutRequest, staff string) cashbox.CashOutInput {
	return cashbox.CashOutInput{
		Refs:      refs(in.RefsRequest, staff),
		Chips:     toQuantities(in.Chips),
		FoodCents: entity.Amount(in.FoodCents),
	}
}

// QuoteCashOut godoc
// @Summary      Plan de pago de un cobro de fichas
// @Tags         cashout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CashOutRequest  true  "fichas y consumo"
// @Success      200  {object}  dto.CashOutQuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/cashout/quote [post]
func (h *EventHandler) QuoteCashOut(c *fiber.Ctx) error {
	var in dto.CashOutRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	q, err := h.svc.PlanCashOut(c.UserContext(), cashOutInput(in, GetStaff(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CashOutQuoteResponse{
		ChipsTotal:   h.out.amount(q.ChipsTotal),
		Food:         h.out.amount(q.Food),
		PlanResponse: h.out.plan(&q.Quote),
	})
}

// ConfirmCashOut godoc
// @Summary      Confirmar cobro de fichas
// @Description  409 si la caja cambió desde el plan; hay que volver a cotizar.
// @Tags         cashout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CashOutConfirmRequest  true  "fichas, consumo y plan aceptado"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cashout [post]
func (h *EventHandler) ConfirmCashOut(c *fiber.Ctx) error {
	var in dto.CashOutConfirmRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.ConfirmCashOut(c.UserContext(), cashOutInput(in.CashOutRequest, GetStaff(c)), toQuantities(in.Plan))
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

func buyInInput(in dto.BuyInRequest, staff string) cashbox.BuyInInput {
	return cashbox.BuyInInput{
		Refs:       refs(in.RefsRequest, staff),
		Tendered:   toQuantities(in.Tendered),
		ChipsCents: entity.Amount(in.ChipsCents),
	}
}

// QuoteBuyIn godoc
// @Summary      Vuelto de una compra de fichas
// @Tags         buyin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.BuyInRequest  true  "billetes entregados y monto en fichas"
// @Success      200  {object}  dto.BuyInQuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/buyin/quote [post]
func (h *EventHandler) QuoteBuyIn(c *fiber.Ctx) error {
	var in dto.BuyInRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	q, err := h.svc.PlanBuyIn(c.UserContext(), buyInInput(in, GetStaff(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BuyInQuoteResponse{
		Tendered:     h.out.amount(q.Tendered),
		Chips:        h.out.amount(q.Chips),
		PlanResponse: h.out.plan(&q.Quote),
	})
}

// ConfirmBuyIn godoc
// @Summary      Confirmar compra de fichas
// @Tags         buyin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.BuyInConfirmRequest  true  "billetes, fichas y vuelto aceptado"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/buyin [post]
func (h *EventHandler) ConfirmBuyIn(c *fiber.Ctx) error {
	var in dto.BuyInConfirmRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.ConfirmBuyIn(c.UserContext(), buyInInput(in.BuyInRequest, GetStaff(c)), toQuantities(in.Change))
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

func saleInput(in dto.SaleRequest, staff string) cashbox.SaleInput {
	return cashbox.SaleInput{
		Refs:        refs(in.RefsRequest, staff),
		TotalCents:  entity.Amount(in.TotalCents),
		Cash:        toQuantities(in.Cash),
		Chips:       toQuantities(in.Chips),
		Description: in.Description,
	}
}

// QuoteSale godoc
// @Summary      Vuelto de una venta
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SaleRequest  true  "total y pago"
// @Success      200  {object}  dto.SaleQuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/quote [post]
func (h *EventHandler) QuoteSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	q, err := h.svc.PlanSale(c.UserContext(), saleInput(in, GetStaff(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SaleQuoteResponse{
		Total:        h.out.amount(q.Total),
		Paid:         h.out.amount(q.Paid),
		PlanResponse: h.out.plan(&q.Quote),
	})
}

// ConfirmSale godoc
// @Summary      Confirmar venta
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SaleConfirmRequest  true  "total, pago y vuelto aceptado"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *EventHandler) ConfirmSale(c *fiber.Ctx) error {
	var in dto.SaleConfirmRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.ConfirmSale(c.UserContext(), saleInput(in.SaleRequest, GetStaff(c)), toQuantities(in.Change))
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

// AddFloat godoc
// @Summary      Agregar billetes al float
// @Tags         float
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.FloatRequest  true  "conteo"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/float [post]
func (h *EventHandler) AddFloat(c *fiber.Ctx) error {
	var in dto.FloatRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.AddFloat(c.UserContext(), toQuantities(in.Counts), refs(in.RefsRequest, GetStaff(c)))
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

// LostChips godoc
// @Summary      Registrar fichas perdidas como propina
// @Tags         chips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.LostChipsRequest  true  "fichas"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lost-chips [post]
func (h *EventHandler) LostChips(c *fiber.Ctx) error {
	var in dto.LostChipsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.RecordLostChips(c.UserContext(), toQuantities(in.Chips), refs(in.RefsRequest, GetStaff(c)))
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

// Exchange godoc
// @Summary      Cambio de billetes
// @Tags         exchange
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ExchangeRequest  true  "entregado y recibido"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exchange [post]
func (h *EventHandler) Exchange(c *fiber.Ctx) error {
	var in dto.ExchangeRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.Exchange(c.UserContext(), cashbox.ExchangeInput{
		Refs:    refs(in.RefsRequest, GetStaff(c)),
		Give:    toQuantities(in.Give),
		Receive: toQuantities(in.Receive),
	})
	if err != nil {
		return writeError(c, err)
	}
	return batchCreated(c, id)
}

// Reverse godoc
// @Summary      Revertir un lote o una referencia de transacción
// @Description  Requiere la contraseña de administrador. Por defecto compensa; hard_delete borra las filas.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReverseRequest  true  "batch_id o transaction_ref, password"
// @Success      201  {object}  dto.BatchCreatedResponse
// @Success      200  {object}  dto.BatchCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/reverse [post]
func (h *EventHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.svc.Reverse(c.UserContext(), cashbox.ReverseInput{
		BatchID:        entity.BatchID(in.BatchID),
		TransactionRef: in.TransactionRef,
		Password:       in.Password,
		HardDelete:     in.HardDelete,
		Staff:          GetStaff(c),
		Note:           in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	if in.HardDelete {
		// id del lote borrado; no se creó ninguno nuevo
		return c.JSON(dto.BatchCreatedResponse{BatchID: string(id)})
	}
	return batchCreated(c, id)
}
