package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/notify"
)

func TestLogNotifier_EscribeCamposDeLaAlerta(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(zerolog.New(&buf))

	err := n.Notify(context.Background(), &entity.Notification{
		ID:         "n-1",
		TenantID:   "t-1",
		EntityType: entity.EntityTypeStockBatch,
		EntityID:   "b-1",
		RuleID:     "auto_expire",
		Severity:   entity.SeverityCritical,
		Title:      "Lote vencido",
		DedupeKey:  "stock_batch:b-1:auto_expire:use_by=2024-01-14",
		CreatedAt:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Lote vencido", line["message"])
	assert.Equal(t, "t-1", line["tenant_id"])
	assert.Equal(t, "critical", line["severity"])
	assert.Equal(t, "stock_batch:b-1:auto_expire:use_by=2024-01-14", line["dedupe_key"])
}
