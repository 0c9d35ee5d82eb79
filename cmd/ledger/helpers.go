package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Veraticus/spice-ledger/internal/analysis"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/engine"
	"github.com/Veraticus/spice-ledger/internal/format"
	"github.com/Veraticus/spice-ledger/internal/hierarchy"
)

// session is what every reporting command needs: settings and a loaded
// dataset.
type session struct {
	settings *config.Settings
	dataset  *engine.Dataset
}

// openSession resolves settings, loads the hierarchy and classifies the
// timeline. Interrupts cancel the load.
func openSession(ctx context.Context, operation string) (*session, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, common.NewUserError("inputs are not set up; pass --hierarchy and --data or set them in config.yaml", err)
	}

	doc, err := engine.LoadConfig(settings.HierarchyPath)
	if err != nil {
		return nil, err
	}

	interruptHandler := cli.NewInterruptHandler(nil)
	ctx = interruptHandler.HandleInterrupts(ctx, operation)
	defer interruptHandler.Stop()

	ds, err := engine.LoadDataset(ctx, settings.DataPath, doc)
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil, fmt.Errorf("%s canceled: %w", operation, err)
		}
		common.LogError(err, "Failed to load dataset", common.Fields{"path": settings.DataPath})
		return nil, err
	}
	return &session{settings: settings, dataset: ds}, nil
}

// newFormatter renders amounts in the hierarchy's currency format, sized to
// the terminal when there is one.
func newFormatter(doc *hierarchy.Document, w io.Writer) *analysis.CLIFormatter {
	f := analysis.NewCLIFormatter(format.NewCurrency(doc.Currency))
	if fd, ok := w.(interface{ Fd() uintptr }); ok {
		if width, _, err := term.GetSize(int(fd.Fd())); err == nil && width > 0 {
			f = f.WithWidth(width)
		}
	}
	return f
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
