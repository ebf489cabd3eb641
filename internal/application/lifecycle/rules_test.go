package lifecycle_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

func ruleByID(t *testing.T, opts lifecycle.RuleOptions, id string) lifecycle.Rule {
	t.Helper()
	for _, r := range lifecycle.Rules(opts) {
		if r.ID == id {
			return r
		}
	}
	require.FailNow(t, "regla inexistente", id)
	return lifecycle.Rule{}
}

// activeCandidate lote activo con stock que vence el día d de enero de 2024.
func activeCandidate(d int) lifecycle.Candidate {
	return lifecycle.Candidate{
		TenantID:  tenantID,
		EntityID:  "b",
		Label:     "LOT-b",
		Status:    entity.BatchStatusActive,
		Due:       date(2024, 1, d),
		Remaining: decimal.NewFromInt(1),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Umbrales por regla
// ──────────────────────────────────────────────────────────────────────────────

func TestRules_ListaCerrada(t *testing.T) {
	ids := make([]string, 0, 7)
	for _, r := range lifecycle.Rules(lifecycle.RuleOptions{}) {
		ids = append(ids, r.ID)
		assert.NotEmpty(t, r.EntityType)
		assert.NotNil(t, r.Load)
		assert.NotNil(t, r.Check)
		assert.Equal(t, r.ID == lifecycle.RuleAutoExpire, r.Transitions, "solo auto_expire cambia estado: %s", r.ID)
	}
	assert.ElementsMatch(t, []string{
		lifecycle.RuleAutoExpire,
		lifecycle.RuleUseByApproaching,
		lifecycle.RuleBestBeforeApproaching,
		lifecycle.RuleCalibrationOverdue,
		lifecycle.RuleCorrectiveActionOverdue,
		lifecycle.RuleRecallNotificationOverdue,
		lifecycle.RuleSupplierDocumentExpiring,
	}, ids)
}

func TestUseByApproaching_Severidad(t *testing.T) {
	rule := ruleByID(t, lifecycle.RuleOptions{}, lifecycle.RuleUseByApproaching)
	today := date(2024, 1, 15)

	cases := []struct {
		day      int
		severity string // vacío = sin alerta
		tier     string
	}{
		{14, "", ""},
		{15, entity.SeverityCritical, "days_left=0"},
		{16, entity.SeverityCritical, "days_left=1"},
		{17, entity.SeverityWarning, "days_left=2"},
		{18, entity.SeverityWarning, "days_left=3"},
		{19, "", ""},
	}
	for _, tc := range cases {
		b := rule.Check(activeCandidate(tc.day), today)
		if tc.severity == "" {
			assert.Nil(t, b, "día %d", tc.day)
			continue
		}
		require.NotNil(t, b, "día %d", tc.day)
		assert.Equal(t, tc.severity, b.Severity, "día %d", tc.day)
		assert.Equal(t, tc.tier, b.Tier)
		assert.False(t, b.Expire)
	}
}

func TestAutoExpire_SoloAntesDeHoy(t *testing.T) {
	rule := ruleByID(t, lifecycle.RuleOptions{}, lifecycle.RuleAutoExpire)
	today := date(2024, 1, 15)

	assert.Nil(t, rule.Check(activeCandidate(15), today), "vence hoy: aún vigente")

	b := rule.Check(activeCandidate(14), today)
	require.NotNil(t, b)
	assert.True(t, b.Expire)
	assert.Equal(t, entity.SeverityCritical, b.Severity)

	sinStock := activeCandidate(1)
	sinStock.Remaining = decimal.Zero
	assert.Nil(t, rule.Check(sinStock, today))

	cuarentena := activeCandidate(1)
	cuarentena.Status = entity.BatchStatusQuarantined
	assert.Nil(t, rule.Check(cuarentena, today))
}

func TestBestBeforeApproaching_VentanaSieteDias(t *testing.T) {
	rule := ruleByID(t, lifecycle.RuleOptions{}, lifecycle.RuleBestBeforeApproaching)
	today := date(2024, 1, 15)

	b := rule.Check(activeCandidate(22), today)
	require.NotNil(t, b)
	assert.Equal(t, entity.SeverityInfo, b.Severity)
	assert.Nil(t, rule.Check(activeCandidate(23), today))
	assert.Nil(t, rule.Check(activeCandidate(14), today))
}

func TestRecallOverdue_CalendarioVsHabiles(t *testing.T) {
	today := date(2024, 1, 15) // lunes
	recall := func(d int) lifecycle.Candidate {
		return lifecycle.Candidate{
			TenantID: tenantID, EntityID: "r", Label: "Distribuidora",
			Status: entity.RecallNotificationActive, Due: date(2024, 1, d), Pending: true,
		}
	}

	calendar := ruleByID(t, lifecycle.RuleOptions{}, lifecycle.RuleRecallNotificationOverdue)
	assert.NotNil(t, calendar.Check(recall(11), today), "jueves: más de 3 días corridos")
	assert.Nil(t, calendar.Check(recall(12), today), "viernes: justo 3 días corridos")

	business := ruleByID(t, lifecycle.RuleOptions{RecallBusinessDays: true}, lifecycle.RuleRecallNotificationOverdue)
	assert.Nil(t, business.Check(recall(11), today), "jueves: 2 días hábiles")
	b := business.Check(recall(9), today)
	require.NotNil(t, b)
	assert.Equal(t, entity.SeverityCritical, b.Severity)

	notified := recall(1)
	notified.Pending = false
	assert.Nil(t, calendar.Check(notified, today))
}

func TestSupplierDocumentExpiring_TreintaDias(t *testing.T) {
	rule := ruleByID(t, lifecycle.RuleOptions{}, lifecycle.RuleSupplierDocumentExpiring)
	today := date(2024, 1, 15)

	assert.NotNil(t, rule.Check(lifecycle.Candidate{Due: date(2024, 2, 14)}, today))
	assert.Nil(t, rule.Check(lifecycle.Candidate{Due: date(2024, 2, 15)}, today))
	assert.NotNil(t, rule.Check(lifecycle.Candidate{Due: today}, today))
}

func TestLatestPerAsset(t *testing.T) {
	cals := []*entity.Calibration{
		{ID: "a-old", TenantID: tenantID, AssetID: "horno", NextDue: date(2024, 1, 1)},
		{ID: "b", TenantID: tenantID, AssetID: "balanza", NextDue: date(2024, 1, 10)},
		{ID: "a-new", TenantID: tenantID, AssetID: "horno", NextDue: date(2024, 6, 1)},
		{ID: "a-other", TenantID: "otro", AssetID: "horno", NextDue: date(2023, 1, 1)},
	}
	latest := lifecycle.LatestPerAsset(cals)

	ids := make([]string, 0, len(latest))
	for _, c := range latest {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a-new", "b", "a-other"}, ids)
}
