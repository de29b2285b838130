// Package templates holds the HTML components of the validation UI.
//
// Components are templ.Component values, so handlers render them the same
// way whether they come from generated .templ files or are written by hand.
package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// text writes s HTML-escaped.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) int(n int) {
	h.raw(strconv.Itoa(n))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2933}
main{max-width:960px;margin:2rem auto;padding:0 1rem}
h1{font-size:1.5rem}
.card{background:#fff;border-radius:8px;padding:1.25rem;margin-bottom:1rem;box-shadow:0 1px 2px rgba(0,0,0,.08)}
label{display:block;font-weight:600;margin:.75rem 0 .25rem}
textarea{width:100%;min-height:8rem;font-family:monospace}
table{border-collapse:collapse;width:100%;font-size:.9rem}
th,td{border-bottom:1px solid #e4e7eb;padding:.4rem;text-align:left}
.ok{color:#127c3a}.bad{color:#b42318}.warn{color:#a15c07}
.alert{border-left:4px solid #b42318;background:#fef3f2;padding:.75rem 1rem;margin-bottom:1rem}
.muted{color:#616e7c;font-size:.85rem}
code{background:#eef0f3;padding:0 .25rem;border-radius:3px}
`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(`</title><style>`, styles, `</style></head><body><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<div>`)
			h.text(action)
			h.raw(`</div>`)
		}
		if code != "" {
			h.raw(`<div class="muted">Código: `)
			h.text(code)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorPage is ErrorAlert inside the layout with a link back to the form.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>No se pudo validar el archivo</h1>`)
		h.render(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Volver</a></p>`)
		return h.err
	}))
}

// joinInts formats line numbers for display, truncating long lists.
func joinInts(nums []int, limit int) string {
	parts := make([]string, 0, min(len(nums), limit))
	for i, n := range nums {
		if i == limit {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}
