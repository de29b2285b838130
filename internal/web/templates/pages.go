package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// MaxFindingsShown caps the findings table on the result page. The full list
// is available from the API and the downloadable reports.
const MaxFindingsShown = 500

// UploadData feeds the upload form.
type UploadData struct {
	Projects    []validator.Profile
	Kinds       []validator.DataKind
	MaxFileSize string
}

// UploadPage renders the validation form.
func UploadPage(data UploadData) templ.Component {
	return Layout("Validar CSV", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Validar archivo CSV</h1>`)
		h.raw(`<form class="card" method="post" action="/validate" enctype="multipart/form-data">`)

		h.raw(`<label for="file">Archivo CSV</label>`)
		h.raw(`<input id="file" name="file" type="file" accept=".csv,text/csv" required>`)
		h.raw(`<div class="muted">Tamaño máximo: `)
		h.text(data.MaxFileSize)
		h.raw(`</div>`)

		h.raw(`<label for="project">Proyecto destino</label><select id="project" name="project" required>`)
		for _, p := range data.Projects {
			h.raw(`<option value="`)
			h.text(p.Name)
			h.raw(`">`)
			h.text(p.Name)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)

		h.raw(`<label for="columns">Configuración de columnas (JSON o YAML, opcional)</label>`)
		h.raw(`<textarea id="columns" name="columns" placeholder="User.UserAttributes.Edad:&#10;  type: Entero&#10;  required: true"></textarea>`)

		h.raw(`<p><button type="submit">Validar</button></p></form>`)

		h.raw(`<div class="card"><h2>Proyectos</h2><table><thead><tr><th>Nombre</th><th>Reglas</th></tr></thead><tbody>`)
		for _, p := range data.Projects {
			h.raw(`<tr><td>`)
			h.text(p.Name)
			h.raw(`</td><td>`)
			h.text(p.Description)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></div>`)

		h.raw(`<div class="card"><h2>Tipos de dato</h2><table><thead><tr><th>Tipo</th><th>Nombre en configuración</th></tr></thead><tbody>`)
		for _, k := range data.Kinds {
			h.raw(`<tr><td>`)
			h.text(k.Label())
			h.raw(`</td><td><code>`)
			h.text(k.String())
			h.raw(`</code></td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
		return h.err
	}))
}

// ResultData feeds the result page.
type ResultData struct {
	RunID    string
	FileName string
	Project  string
	Duration string
	Result   validator.Result
}

// ResultPage renders the outcome of one validation run.
func ResultPage(data ResultData) templ.Component {
	return Layout("Resultado de validación", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(data.FileName)
		h.raw(`</h1><p class="muted">Proyecto `)
		h.text(data.Project)
		h.raw(` · ejecución <code>`)
		h.text(data.RunID)
		h.raw(`</code> · `)
		h.text(data.Duration)
		h.raw(`</p>`)

		switch res := data.Result; {
		case res.Structural != nil:
			h.render(ctx, structuralCard(res.Structural))
		case res.Report != nil:
			h.render(ctx, reportCard(res.Report))
		}

		h.raw(`<p><a href="/">Validar otro archivo</a></p>`)
		return h.err
	}))
}

func structuralCard(e *validator.StructuralError) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="card"><h2 class="bad">Error de estructura</h2><p>`)
		h.text(e.Message)
		h.raw(`</p><p class="muted">Código: `)
		h.text(e.Code)
		h.raw(`</p>`)
		if len(e.Lines) > 0 {
			h.raw(`<p>Filas: `)
			h.text(joinInts(e.Lines, 50))
			h.raw(`</p>`)
		}
		if len(e.Columns) > 0 {
			h.raw(`<p>Columnas:`)
			for _, c := range e.Columns {
				h.raw(` <code>`)
				h.text(c)
				h.raw(`</code>`)
			}
			h.raw(`</p>`)
		}
		if len(e.Causes) > 0 {
			h.raw(`<h3>Posibles causas</h3><ol>`)
			for _, c := range e.Causes {
				h.raw(`<li><strong>`)
				h.text(c.Title)
				h.raw(`</strong><div>`)
				h.text(c.Remedy)
				h.raw(`</div></li>`)
			}
			h.raw(`</ol>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func reportCard(r *validator.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="card">`)
		if r.Clean() {
			h.raw(`<h2 class="ok">Archivo válido</h2>`)
		} else {
			h.raw(`<h2 class="bad">`)
			h.int(len(r.Findings))
			h.raw(` hallazgos</h2>`)
		}
		h.raw(`<p class="muted">`)
		h.int(r.RowCount)
		h.raw(` filas · `)
		h.int(len(r.Header))
		h.raw(` columnas · codificación `)
		h.text(r.Encoding)
		h.raw(`</p>`)

		for _, wn := range r.Warnings {
			h.raw(`<p class="warn">`)
			h.text(wn.Message)
			h.raw(` (filas: `)
			h.text(joinInts(wn.Rows, 50))
			h.raw(`)</p>`)
		}

		if len(r.Findings) > 0 {
			h.raw(`<table><thead><tr><th>Fila</th><th>Columna</th><th>Valor</th><th>Mensaje</th></tr></thead><tbody>`)
			for i, f := range r.Findings {
				if i == MaxFindingsShown {
					break
				}
				h.raw(`<tr><td>`)
				h.int(f.Row)
				h.raw(`</td><td>`)
				h.text(f.Column)
				h.raw(`</td><td><code>`)
				h.text(f.Value)
				h.raw(`</code></td><td>`)
				h.text(f.Message)
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
			if len(r.Findings) > MaxFindingsShown {
				h.raw(`<p class="muted">Se muestran los primeros `, strconv.Itoa(MaxFindingsShown),
					` hallazgos. Descargá el reporte completo desde la API con <code>?format=xlsx</code>.</p>`)
			}
		}
		h.raw(`</div>`)
		return h.err
	})
}
