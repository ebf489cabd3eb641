package genealogy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Plantillas por defecto de los códigos de salida.
const (
	DefaultFinishedTemplate  = "FP-{YYYY}-{MMDD}-{SEQ}"
	DefaultByproductTemplate = "BP-{YYYY}-{MMDD}-{SEQ}"
)

// OutputConfig plantillas de código por tipo de salida.
type OutputConfig struct {
	FinishedTemplate  string
	ByproductTemplate string
}

func (c OutputConfig) templateFor(outputType string) string {
	if outputType == entity.OutputTypeByproduct {
		if c.ByproductTemplate != "" {
			return c.ByproductTemplate
		}
		return DefaultByproductTemplate
	}
	if c.FinishedTemplate != "" {
		return c.FinishedTemplate
	}
	return DefaultFinishedTemplate
}

// RecordOutputUseCase registra salidas de producción: fila de salida, lote generado y
// movimiento de recepción, todo en una sola transacción con el lote de producción bloqueado.
type RecordOutputUseCase struct {
	txRunner  TxRunner
	generator *CodeGenerator
	cfg       OutputConfig
	clock     ports.Clock
}

// NewRecordOutputUseCase construye el caso de uso.
func NewRecordOutputUseCase(txRunner TxRunner, generator *CodeGenerator, cfg OutputConfig, clock ports.Clock) *RecordOutputUseCase {
	return &RecordOutputUseCase{txRunner: txRunner, generator: generator, cfg: cfg, clock: clock}
}

// RecordProductionOutput valida y registra una salida del lote de producción.
// Desperdicio solo deja la fila de salida: sin código, sin lote y sin movimiento.
func (uc *RecordOutputUseCase) RecordProductionOutput(ctx context.Context, tenantID, userID, productionBatchID string, in dto.RecordOutputRequest) (*dto.OutputResultResponse, error) {
	if tenantID == "" || productionBatchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() {
		return nil, &domain.ValidationError{Fields: map[string]string{"quantity": "gt"}}
	}
	useBy, err := parseDate("use_by_date", in.UseByDate)
	if err != nil {
		return nil, err
	}
	bestBefore, err := parseDate("best_before_date", in.BestBeforeDate)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var (
		output *entity.ProductionBatchOutput
		batch  *entity.StockBatch
	)

	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// 1. Bloquear el lote de producción y validar precondiciones
		pb, err := repos.Productions.GetForUpdate(ctx, tenantID, productionBatchID)
		if err != nil {
			return err
		}
		if pb == nil {
			return domain.ErrEntityNotFound
		}
		if pb.Status == entity.ProductionStatusCancelled {
			return fmt.Errorf("%w: lote de producción %s cancelado", domain.ErrInvalidState, pb.BatchCode)
		}
		unit := pb.Unit
		if in.Unit != "" && in.Unit != pb.Unit {
			return &domain.UnitMismatchError{Expected: pb.Unit, Got: in.Unit}
		}

		// 2. Vida útil contra la fecha de producción
		if useBy != nil {
			shelfLife := NewShelfLifeValidator(repos.Specifications)
			if err := shelfLife.Validate(ctx, tenantID, *useBy, in.StockItemID, pb.ProductionDate); err != nil {
				return err
			}
		}

		output = &entity.ProductionBatchOutput{
			ID:                uuid.New().String(),
			TenantID:          tenantID,
			ProductionBatchID: pb.ID,
			StockItemID:       in.StockItemID,
			OutputType:        in.OutputType,
			Quantity:          in.Quantity,
			Unit:              unit,
			UseByDate:         useBy,
			BestBeforeDate:    bestBefore,
			CreatedAt:         now,
			CreatedBy:         userID,
		}
		if output.IsWaste() {
			return repos.Productions.CreateOutput(ctx, output)
		}

		// 3. Alérgenos heredados de todas las entradas
		allergens, err := NewAllergenPropagator(repos.Productions, repos.Batches).Inherited(ctx, tenantID, pb.ID)
		if err != nil {
			return err
		}

		// 4. Lote generado; el código se reserva al insertarlo
		origin := pb.ID
		batch = &entity.StockBatch{
			ID:                      uuid.New().String(),
			TenantID:                tenantID,
			StockItemID:             in.StockItemID,
			QuantityReceived:        in.Quantity,
			QuantityRemaining:       in.Quantity,
			Unit:                    unit,
			UseByDate:               useBy,
			BestBeforeDate:          bestBefore,
			Allergens:               allergens,
			Status:                  entity.BatchStatusActive,
			OriginProductionBatchID: &origin,
			CreatedAt:               now,
			UpdatedAt:               now,
		}
		claim := func(code string) error {
			batch.BatchCode = code
			return repos.Batches.Create(ctx, batch)
		}
		code := in.BatchCode
		if code != "" {
			if err := claim(code); err != nil {
				return err
			}
		} else {
			code, err = uc.generator.Allocate(ctx, repos.Sequences, CodeRequest{
				Template: uc.cfg.templateFor(in.OutputType),
				TenantID: tenantID,
				Scope:    in.OutputType,
				At:       pb.ProductionDate,
			}, claim)
			if err != nil {
				return err
			}
		}

		// 5. Fila de salida enlazada al lote
		output.GeneratedBatchCode = &code
		output.StockBatchID = &batch.ID
		if err := repos.Productions.CreateOutput(ctx, output); err != nil {
			return err
		}

		// 6. Movimiento de recepción
		return repos.Movements.Create(ctx, &entity.BatchMovement{
			ID:           uuid.New().String(),
			TenantID:     tenantID,
			StockBatchID: batch.ID,
			Type:         entity.BatchMovementReceived,
			Quantity:     in.Quantity,
			Unit:         unit,
			Note:         receivedNote(in.OutputType, pb.BatchCode),
			ReferenceID:  pb.ID,
			CreatedAt:    now,
			CreatedBy:    userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return toOutputResult(output, batch), nil
}

func receivedNote(outputType, productionCode string) string {
	if outputType == entity.OutputTypeByproduct {
		return "Subproducto recibido del lote de producción " + productionCode
	}
	return "Producto terminado recibido del lote de producción " + productionCode
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func toOutputResult(o *entity.ProductionBatchOutput, b *entity.StockBatch) *dto.OutputResultResponse {
	res := &dto.OutputResultResponse{
		Output: dto.ProductionOutputResponse{
			ID:                 o.ID,
			ProductionBatchID:  o.ProductionBatchID,
			StockItemID:        o.StockItemID,
			OutputType:         o.OutputType,
			Quantity:           o.Quantity,
			Unit:               o.Unit,
			UseByDate:          formatDate(o.UseByDate),
			BestBeforeDate:     formatDate(o.BestBeforeDate),
			GeneratedBatchCode: o.GeneratedBatchCode,
			StockBatchID:       o.StockBatchID,
			CreatedAt:          o.CreatedAt,
		},
	}
	if b != nil {
		res.StockBatch = toStockBatchResponse(b)
	}
	return res
}

func toStockBatchResponse(b *entity.StockBatch) *dto.StockBatchResponse {
	allergens := b.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	return &dto.StockBatchResponse{
		ID:                      b.ID,
		BatchCode:               b.BatchCode,
		StockItemID:             b.StockItemID,
		QuantityReceived:        b.QuantityReceived,
		QuantityRemaining:       b.QuantityRemaining,
		Unit:                    b.Unit,
		UseByDate:               formatDate(b.UseByDate),
		BestBeforeDate:          formatDate(b.BestBeforeDate),
		Allergens:               allergens,
		Status:                  b.Status,
		OriginProductionBatchID: b.OriginProductionBatchID,
	}
}
