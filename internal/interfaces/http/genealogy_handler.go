package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/genealogy"
)

// GenealogyHandler salidas de producción, trazas y códigos de lote (protegido).
type GenealogyHandler struct {
	recordOutput *genealogy.RecordOutputUseCase
	trace        *genealogy.TraceUseCase
	codes        *genealogy.BatchCodeUseCase
}

// NewGenealogyHandler construye el handler.
func NewGenealogyHandler(recordOutput *genealogy.RecordOutputUseCase, trace *genealogy.TraceUseCase, codes *genealogy.BatchCodeUseCase) *GenealogyHandler {
	return &GenealogyHandler{recordOutput: recordOutput, trace: trace, codes: codes}
}

// RecordOutput godoc
// @Summary      Registrar salida de un lote de producción
// @Description  Producto terminado y subproducto crean un lote de stock con código generado,
//
//	alérgenos heredados y movimiento de recepción. El desperdicio solo queda registrado.
//
// @Tags         genealogy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del lote de producción"
// @Param        body  body  dto.RecordOutputRequest  true  "stock_item_id, output_type, quantity, fechas opcionales"
// @Success      201   {object}  dto.OutputResultResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/production-batches/{id}/outputs [post]
func (h *GenealogyHandler) RecordOutput(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordOutputRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.recordOutput.RecordProductionOutput(c.Context(), tenantID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TraceBatch godoc
// @Summary      Trazabilidad de un lote
// @Tags         genealogy
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del lote de stock"
// @Param        direction  query  string  false  "forward (defecto) o backward"
// @Success      200  {object}  dto.TraceResponse
// @Failure      400  {object}  dto.ValidationErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/trace [get]
func (h *GenealogyHandler) TraceBatch(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.trace.TraceBatch(c.Context(), tenantID, c.Params("id"), c.Query("direction"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// TraceDispatch godoc
// @Summary      Trazabilidad hacia atrás desde un despacho
// @Tags         genealogy
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.TraceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id}/trace [get]
func (h *GenealogyHandler) TraceDispatch(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.trace.TraceDispatch(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GenerateBatchCode godoc
// @Summary      Generar código de lote
// @Tags         genealogy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateBatchCodeRequest  true  "template, scope, date opcional"
// @Success      201   {object}  dto.BatchCodeResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batch-codes [post]
func (h *GenealogyHandler) GenerateBatchCode(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.GenerateBatchCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.codes.GenerateBatchCodeFromRequest(c.Context(), tenantID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
