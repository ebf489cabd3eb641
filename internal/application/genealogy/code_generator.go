package genealogy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// DefaultCodeMaxRetries reintentos por colisión antes de ErrCodeGenerationExhausted.
const DefaultCodeMaxRetries = 5

// CodeRequest datos para generar un código: plantilla, tenant, ámbito del contador y fecha.
type CodeRequest struct {
	Template string
	TenantID string
	Scope    string
	At       time.Time
}

// ClaimFunc intenta reservar el código (normalmente insertando la fila que lo lleva).
// Debe devolver domain.ErrStoreConflict si el código ya existe.
type ClaimFunc func(code string) error

// CodeGenerator genera códigos de lote a partir de una plantilla y una secuencia
// administrada por el almacenamiento (incremento atómico, sin estado en proceso).
type CodeGenerator struct {
	maxRetries int
}

// NewCodeGenerator construye el generador; maxRetries <= 0 usa el valor por defecto.
func NewCodeGenerator(maxRetries int) *CodeGenerator {
	if maxRetries <= 0 {
		maxRetries = DefaultCodeMaxRetries
	}
	return &CodeGenerator{maxRetries: maxRetries}
}

// Allocate toma el siguiente valor de secuencia, renderiza el código e intenta reservarlo.
// Si otro escritor ganó la carrera (ErrStoreConflict) prueba con el siguiente valor,
// hasta maxRetries intentos.
func (g *CodeGenerator) Allocate(ctx context.Context, seqs repository.SequenceRepository, req CodeRequest, claim ClaimFunc) (string, error) {
	if err := dgen.ValidateCodeTemplate(req.Template); err != nil {
		return "", &domain.ValidationError{Fields: map[string]string{"template": err.Error()}}
	}
	scopeKey := dgen.SequenceScopeKey(req.Scope, req.At)
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		seq, err := seqs.Next(ctx, req.TenantID, scopeKey)
		if err != nil {
			return "", fmt.Errorf("siguiente secuencia %s: %w", scopeKey, err)
		}
		code, err := dgen.RenderCode(req.Template, req.At, seq)
		if err != nil {
			return "", err
		}
		err = claim(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrStoreConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: plantilla %q tras %d intentos", domain.ErrCodeGenerationExhausted, req.Template, g.maxRetries)
}

// BatchCodeUseCase expone la generación de códigos a llamadores externos (reserva de códigos
// para recepciones o lotes de producción creados fuera de este servicio).
type BatchCodeUseCase struct {
	sequences repository.SequenceRepository
	batches   repository.StockBatchRepository
	generator *CodeGenerator
	clock     ports.Clock
}

// NewBatchCodeUseCase construye el caso de uso.
func NewBatchCodeUseCase(
	sequences repository.SequenceRepository,
	batches repository.StockBatchRepository,
	generator *CodeGenerator,
	clock ports.Clock,
) *BatchCodeUseCase {
	return &BatchCodeUseCase{sequences: sequences, batches: batches, generator: generator, clock: clock}
}

// GenerateBatchCode genera un código con fecha de hoy que no colisiona con lotes existentes del tenant.
func (uc *BatchCodeUseCase) GenerateBatchCode(ctx context.Context, template, tenantID, scope string) (string, error) {
	return uc.generate(ctx, CodeRequest{Template: template, TenantID: tenantID, Scope: scope, At: uc.clock.Now()})
}

// GenerateBatchCodeFromRequest adapta el request HTTP (fecha opcional) al caso de uso.
func (uc *BatchCodeUseCase) GenerateBatchCodeFromRequest(ctx context.Context, tenantID string, in dto.GenerateBatchCodeRequest) (*dto.BatchCodeResponse, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	at := uc.clock.Now()
	if d, err := parseDate("date", in.Date); err != nil {
		return nil, err
	} else if d != nil {
		at = *d
	}
	code, err := uc.generate(ctx, CodeRequest{Template: in.Template, TenantID: tenantID, Scope: in.Scope, At: at})
	if err != nil {
		return nil, err
	}
	return &dto.BatchCodeResponse{Code: code}, nil
}

func (uc *BatchCodeUseCase) generate(ctx context.Context, req CodeRequest) (string, error) {
	if req.TenantID == "" || req.Scope == "" {
		return "", domain.ErrInvalidInput
	}
	return uc.generator.Allocate(ctx, uc.sequences, req, func(code string) error {
		exists, err := uc.batches.ExistsByCode(ctx, req.TenantID, code)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrStoreConflict
		}
		return nil
	})
}
