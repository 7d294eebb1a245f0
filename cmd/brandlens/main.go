package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/brandlens-backend/internal/app"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brandlens",
		Short: "Brand discovery and LLM perception pipeline",
		Long: `brandlens builds a brand's ground truth from its website, then measures
how AI assistants describe the brand against that ground truth.

Run "brandlens serve" for the HTTP API or "brandlens worker" for the
Temporal worker. The discover, prompts and scan commands run a single
pipeline step inline and print the result as JSON.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $BRANDLENS_CONFIG)")

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newDiscoverCmd(),
		newPromptsCmd(),
		newScanCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withApp wires the application for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// stderrProgress prints stage reports so stdout stays valid JSON.
func stderrProgress(w io.Writer) progress.Reporter {
	return progress.Func(func(stage string, percent int, message string) {
		fmt.Fprintf(w, "[%3d%%] %-20s %s\n", percent, stage, message)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
