package genealogy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultSeqWidth = 3

// seqToken captura {SEQ} y {SEQ:n}.
var seqToken = regexp.MustCompile(`\{SEQ(?::(\d{1,2}))?\}`)

// ValidateCodeTemplate exige exactamente un token de secuencia; sin él todos los
// reintentos producirían el mismo código.
func ValidateCodeTemplate(template string) error {
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("plantilla de código vacía")
	}
	if n := len(seqToken.FindAllStringIndex(template, -1)); n != 1 {
		return fmt.Errorf("plantilla %q debe contener exactamente un token {SEQ}", template)
	}
	return nil
}

// RenderCode resuelve {YYYY}, {MMDD} y {SEQ}/{SEQ:n} sobre la plantilla.
// Ej: RenderCode("RM-{YYYY}-{MMDD}-{SEQ}", 2024-01-01, 1) = "RM-2024-0101-001".
func RenderCode(template string, at time.Time, seq int64) (string, error) {
	if err := ValidateCodeTemplate(template); err != nil {
		return "", err
	}
	if seq <= 0 {
		return "", fmt.Errorf("secuencia inválida: %d", seq)
	}
	code := strings.ReplaceAll(template, "{YYYY}", at.Format("2006"))
	code = strings.ReplaceAll(code, "{MMDD}", at.Format("0102"))
	code = seqToken.ReplaceAllStringFunc(code, func(tok string) string {
		width := defaultSeqWidth
		if m := seqToken.FindStringSubmatch(tok); len(m) == 2 && m[1] != "" {
			width, _ = strconv.Atoi(m[1])
		}
		return fmt.Sprintf("%0*d", width, seq)
	})
	return code, nil
}

// SequenceScopeKey construye la llave del contador: ámbito + día, así la secuencia se reinicia a diario.
func SequenceScopeKey(scope string, at time.Time) string {
	return scope + ":" + at.Format("20060102")
}
