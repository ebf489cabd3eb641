package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// Scheduler ejecuta el escaneo al iniciar y luego cada interval hasta que ctx termine.
type Scheduler struct {
	scanner  *Scanner
	interval time.Duration
	log      zerolog.Logger
}

// NewScheduler construye el planificador; interval <= 0 usa 24h.
func NewScheduler(scanner *Scanner, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{scanner: scanner, interval: interval, log: log}
}

// Start bloquea hasta que ctx se cancele.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.scanner.Run(ctx, time.Time{})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrScanInProgress):
		s.log.Info().Msg("escaneo en curso en otra instancia, se omite")
	case errors.Is(err, context.Canceled):
	default:
		s.log.Error().Err(err).Msg("escaneo de ciclo de vida")
	}
}
