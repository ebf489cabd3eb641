package dto

// RunScanRequest body para POST /api/lifecycle/scan. AsOf vacío = hoy.
type RunScanRequest struct {
	AsOf string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RuleSummaryResponse contadores de una regla en un escaneo.
type RuleSummaryResponse struct {
	Evaluated    int      `json:"evaluated"`
	Transitioned int      `json:"transitioned"`
	Notified     int      `json:"notified"`
	Errors       []string `json:"errors,omitempty"`
}

// ScanSummaryResponse resultado de un escaneo de ciclo de vida.
type ScanSummaryResponse struct {
	AsOf           string                         `json:"as_of"`
	Rules          map[string]RuleSummaryResponse `json:"rules"`
	Delivered      int                            `json:"delivered"`
	DeliveryErrors int                            `json:"delivery_errors"`
}
