package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// LifecycleHandler disparo manual del escáner (solo admin).
type LifecycleHandler struct {
	scanner *lifecycle.Scanner
}

func NewLifecycleHandler(scanner *lifecycle.Scanner) *LifecycleHandler {
	return &LifecycleHandler{scanner: scanner}
}

// RunScan godoc
// @Summary      Ejecutar escaneo de ciclo de vida
// @Description  Evalúa todas las reglas para la fecha indicada (por defecto hoy) y devuelve el resumen.
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RunScanRequest  false  "as_of opcional (YYYY-MM-DD)"
// @Success      200   {object}  dto.ScanSummaryResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lifecycle/scan [post]
func (h *LifecycleHandler) RunScan(c *fiber.Ctx) error {
	var in dto.RunScanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	var asOf time.Time
	if in.AsOf != "" {
		t, err := time.Parse(time.DateOnly, in.AsOf)
		if err != nil {
			return writeError(c, &domain.ValidationError{Fields: map[string]string{"as_of": "datetime"}})
		}
		asOf = t
	}
	summary, err := h.scanner.Run(c.Context(), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lifecycle.ToScanSummaryResponse(summary))
}
