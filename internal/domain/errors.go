package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrEntityNotFound          = errors.New("entidad no encontrada")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrInvalidState            = errors.New("estado inválido para la operación")
	ErrStoreConflict           = errors.New("conflicto de unicidad en el almacenamiento")
	ErrUnitMismatch            = errors.New("unidad incompatible")
	ErrShelfLifeExceeded       = errors.New("fecha de vencimiento supera la vida útil")
	ErrCodeGenerationExhausted = errors.New("reintentos de generación de código agotados")
	ErrCycleDetected           = errors.New("ciclo detectado en la genealogía")
	ErrScanInProgress          = errors.New("ya hay un escaneo de ciclo de vida en curso")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
)

// UnitMismatchError indica que la salida declara una unidad distinta a la del lote de producción.
type UnitMismatchError struct {
	Expected string
	Got      string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unidad %q no coincide con la unidad del lote de producción %q", e.Got, e.Expected)
}

func (e *UnitMismatchError) Is(target error) bool { return target == ErrUnitMismatch }

// ShelfLifeExceededError lleva la fecha máxima permitida para que el cliente pueda explicarla.
type ShelfLifeExceededError struct {
	Max      time.Time
	Proposed time.Time
}

func (e *ShelfLifeExceededError) Error() string {
	return fmt.Sprintf("fecha de vencimiento %s supera la máxima permitida %s",
		e.Proposed.Format(time.DateOnly), e.Max.Format(time.DateOnly))
}

func (e *ShelfLifeExceededError) Is(target error) bool { return target == ErrShelfLifeExceeded }

// ValidationError detalle por campo de una entrada inválida (campo -> regla incumplida).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida: %v", e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
