package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/dto"
	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// CashboxHandler consultas de caja: disponibilidad, resumen, planes, lotes y bitácora.
type CashboxHandler struct {
	svc *cashbox.Service
	out presenter
}

// NewCashboxHandler construye el handler.
func NewCashboxHandler(svc *cashbox.Service, money MoneyFormatter) *CashboxHandler {
	return &CashboxHandler{svc: svc, out: presenter{money: money}}
}

// Availability godoc
// @Summary      Disponibilidad por denominación
// @Description  reasons acepta una lista (BUYIN,CASHOUT) o una vista: spendable, full, tips, chips.
// @Tags         cashbox
// @Produce      json
// @Security     BearerAuth
// @Param        universe  query  string  true  "CURRENCY | CHIP"
// @Param        reasons   query  string  true  "razones incluidas"
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cashbox/availability [get]
func (h *CashboxHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	universe, err := entity.ParseUniverse(in.Universe)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	reasons, err := entity.ParseReasonFilter(in.Reasons)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	snap, err := h.svc.Availability(c.UserContext(), ledger.AvailabilityQuery{Universe: universe, Reasons: reasons})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.out.snapshot(snap))
}

// Summary godoc
// @Summary      Resumen de caja
// @Tags         cashbox
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SummaryResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/cashbox/summary [get]
func (h *CashboxHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.svc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.out.summary(sum))
}

// Report godoc
// @Summary      Reporte PDF de la sesión
// @Tags         cashbox
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/cashbox/report.pdf [get]
func (h *CashboxHandler) Report(c *fiber.Ctx) error {
	doc, err := h.svc.Report(c.UserContext(), GetStaff(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="cierre-de-caja.pdf"`)
	return c.Send(doc)
}

// Plan godoc
// @Summary      Calcular desglose de pago
// @Description  No escribe nada. 422 si no hay cambio exacto.
// @Tags         cashbox
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PlanRequest  true  "universo, razones y objetivo"
// @Success      200  {object}  dto.PlanResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/cashbox/plan [post]
func (h *CashboxHandler) Plan(c *fiber.Ctx) error {
	var in dto.PlanRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	rs := make([]entity.Reason, 0, len(in.Reasons))
	for _, r := range in.Reasons {
		rs = append(rs, entity.Reason(r))
	}
	q, err := h.svc.Plan(c.UserContext(), cashbox.PlanInput{
		Universe: entity.Universe(in.Universe),
		Reasons:  entity.IncludeReasons(rs...),
		Target:   entity.Amount(in.TargetCents),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.out.plan(q))
}

// Batch godoc
// @Summary      Desglose de un lote
// @Tags         batches
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "batch id"
// @Success      200  {object}  dto.BatchDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *CashboxHandler) Batch(c *fiber.Ctx) error {
	detail, err := h.svc.Batch(c.UserContext(), entity.BatchID(c.Params("id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.out.batch(detail))
}

// Activity godoc
// @Summary      Bitácora de la sesión
// @Tags         batches
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 500"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ActivityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/activity [get]
func (h *CashboxHandler) Activity(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	if resp := validateStruct(&page); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	entries, total, err := h.svc.Activity(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ActivityResponse{
		Items: make([]dto.AuditEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, e := range entries {
		out.Items = append(out.Items, h.out.audit(e))
	}
	c.Set("X-Total-Count", fmt.Sprint(total))
	return c.JSON(out)
}
