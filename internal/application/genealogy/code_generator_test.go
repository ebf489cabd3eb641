package genealogy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

func TestAllocate_ColisionPersistente_Agota(t *testing.T) {
	seq := &constSequence{value: 1}
	gen := genealogy.NewCodeGenerator(3)

	claims := 0
	_, err := gen.Allocate(context.Background(), seq, genealogy.CodeRequest{
		Template: "FP-{SEQ}", TenantID: tenantID, Scope: "finished_product", At: prodDate,
	}, func(string) error {
		claims++
		return domain.ErrStoreConflict
	})

	assert.True(t, errors.Is(err, domain.ErrCodeGenerationExhausted))
	assert.Equal(t, 3, seq.calls)
	assert.Equal(t, 3, claims)
}

func TestAllocate_ErrorNoConflicto_NoReintenta(t *testing.T) {
	seq := &constSequence{value: 7}
	boom := errors.New("disco lleno")

	_, err := genealogy.NewCodeGenerator(5).Allocate(context.Background(), seq, genealogy.CodeRequest{
		Template: "FP-{SEQ}", TenantID: tenantID, Scope: "x", At: prodDate,
	}, func(string) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, seq.calls)
}

func TestAllocate_PlantillaInvalida(t *testing.T) {
	_, err := genealogy.NewCodeGenerator(0).Allocate(context.Background(), &constSequence{value: 1}, genealogy.CodeRequest{
		Template: "FP-{YYYY}", TenantID: tenantID, Scope: "x", At: prodDate,
	}, func(string) error { return nil })

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "template")
}

func TestGenerateBatchCode_SecuenciaPorAmbitoYDia(t *testing.T) {
	store := memory.NewStore()
	uc := genealogy.NewBatchCodeUseCase(store.Sequences(), store.Batches(), genealogy.NewCodeGenerator(0), ports.FixedClock{At: now})
	ctx := context.Background()

	c1, err := uc.GenerateBatchCode(ctx, "RM-{YYYY}-{MMDD}-{SEQ}", tenantID, "raw")
	require.NoError(t, err)
	c2, err := uc.GenerateBatchCode(ctx, "RM-{YYYY}-{MMDD}-{SEQ}", tenantID, "raw")
	require.NoError(t, err)
	other, err := uc.GenerateBatchCode(ctx, "PK-{SEQ}", tenantID, "packaging")
	require.NoError(t, err)

	assert.Equal(t, "RM-2024-0102-001", c1)
	assert.Equal(t, "RM-2024-0102-002", c2)
	assert.Equal(t, "PK-001", other, "cada ámbito tiene su propio contador")
}

func TestGenerateBatchCode_SaltaCodigosExistentes(t *testing.T) {
	store := memory.NewStore()
	store.AddStockBatch(&entity.StockBatch{ID: "x", TenantID: tenantID, BatchCode: "RM-2024-0102-001", Unit: "kg", Status: entity.BatchStatusActive})
	uc := genealogy.NewBatchCodeUseCase(store.Sequences(), store.Batches(), genealogy.NewCodeGenerator(0), ports.FixedClock{At: now})

	res, err := uc.GenerateBatchCodeFromRequest(context.Background(), tenantID, dto.GenerateBatchCodeRequest{
		Template: "RM-{YYYY}-{MMDD}-{SEQ}", Scope: "raw", Date: "2024-01-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "RM-2024-0102-002", res.Code)
}

func TestGenerateBatchCodeFromRequest_Validacion(t *testing.T) {
	store := memory.NewStore()
	uc := genealogy.NewBatchCodeUseCase(store.Sequences(), store.Batches(), genealogy.NewCodeGenerator(0), ports.FixedClock{At: now})

	_, err := uc.GenerateBatchCodeFromRequest(context.Background(), tenantID, dto.GenerateBatchCodeRequest{Scope: "raw"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "required", ve.Fields["template"])
}
