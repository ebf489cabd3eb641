package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/bootstrap"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
)

// exitErr lleva un código de salida a través de cobra.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

type traceFlags struct {
	tenant    string
	direction string
}

func main() {
	root := &cobra.Command{
		Use:           "genealogyctl",
		Short:         "Operaciones de trazabilidad y ciclo de vida de lotes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var asOf string
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Ejecuta un escaneo de ciclo de vida y muestra el resumen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), cmd.OutOrStdout(), asOf)
		},
	}
	scanCmd.Flags().StringVar(&asOf, "as-of", "", "Fecha de evaluación YYYY-MM-DD (por defecto hoy)")

	var tf traceFlags
	traceCmd := &cobra.Command{
		Use:   "trace <batch-id>",
		Short: "Imprime el grafo de trazabilidad de un lote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), cmd.OutOrStdout(), args[0], tf)
		},
	}
	traceCmd.Flags().StringVar(&tf.tenant, "tenant", "", "ID del tenant (obligatorio)")
	traceCmd.Flags().StringVar(&tf.direction, "direction", "forward", "forward o backward")
	_ = traceCmd.MarkFlagRequired("tenant")

	root.AddCommand(scanCmd, traceCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func build(ctx context.Context) (*bootstrap.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, codeError(3, "cargar configuración: %s", err)
	}
	return bootstrap.Build(ctx, cfg, bootstrap.Logger(cfg))
}

func runScan(ctx context.Context, out io.Writer, asOf string) error {
	var at time.Time
	if asOf != "" {
		t, err := time.Parse(time.DateOnly, asOf)
		if err != nil {
			return codeError(3, "--as-of inválido %q: use YYYY-MM-DD", asOf)
		}
		at = t
	}
	container, err := build(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	summary, err := container.Scanner.Run(ctx, at)
	if errors.Is(err, domain.ErrScanInProgress) {
		return codeError(2, "%s", err)
	}
	if err != nil {
		return err
	}
	return writeJSON(out, lifecycle.ToScanSummaryResponse(summary))
}

func runTrace(ctx context.Context, out io.Writer, batchID string, flags traceFlags) error {
	container, err := build(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	res, err := container.Trace.TraceBatch(ctx, flags.tenant, batchID, flags.direction)
	if errors.Is(err, domain.ErrInvalidInput) {
		return codeError(3, "%s", err)
	}
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
