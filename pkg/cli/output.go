package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}

// printReport renders both documents for the terminal. With raw set the
// Markdown is written as is, which keeps the output pipeable.
func printReport(w io.Writer, report *model.Report, raw bool) error {
	if raw {
		_, err := fmt.Fprint(w, report.Markdown())
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create terminal renderer")
	}

	out, err := renderer.Render(report.Markdown())
	if err != nil {
		return goerr.Wrap(err, "failed to render report")
	}
	_, err = fmt.Fprint(w, out)
	return err
}
