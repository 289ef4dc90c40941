package handlers

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// render buffers the component so a failed render can still answer 500
// instead of a truncated page.
func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
