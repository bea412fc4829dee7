package api

import (
	"fmt"
	"net/http"

	scalargo "github.com/bdpiprava/scalar-go"
)

// handleDocs renders the Scalar API reference from api.yaml in DocsDir.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir(s.opts.DocsDir),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("PriceScout API"),
		),
	)
	if err != nil {
		WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}
