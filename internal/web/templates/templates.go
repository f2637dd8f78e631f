// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/colo/internal/core"
)

// ErrorAlert renders a dismissable error box with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code : %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// ImportSummary renders the counters of an import and its row messages.
func ImportSummary(report core.ImportReport) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="import-summary"><dl>`+
				`<dt>Lignes</dt><dd>%d</dd>`+
				`<dt>Créés</dt><dd>%d</dd>`+
				`<dt>Déjà inscrits</dt><dd>%d</dd>`+
				`<dt>Erreurs</dt><dd>%d</dd></dl>`,
			report.TotalRows, report.Created, report.AlreadyExisting, report.ErrorCount)
		if err != nil {
			return err
		}
		if len(report.ErrorMessages) > 0 {
			if _, err := io.WriteString(w, `<ul class="import-errors">`); err != nil {
				return err
			}
			for _, msg := range report.ErrorMessages {
				if _, err := fmt.Fprintf(w, `<li>%s</li>`, templ.EscapeString(msg)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}
