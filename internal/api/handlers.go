package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/index"
	"github.com/matzehuels/gemindex/pkg/semver"
)

// GemSummary is one row of the /gems listing.
type GemSummary struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Latest  string `json:"latest"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Gems    int    `json:"gems"`
	Entries int    `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Gems:    s.idx.Len(),
		Entries: s.idx.EntryCount(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := s.idx.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, gemerrors.Wrap(gemerrors.ErrCodeInternal, err, "encode index"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) handleGems(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	out := []GemSummary{}
	for _, g := range s.idx.Gems() {
		if q != "" && !strings.Contains(strings.ToLower(g.Name), q) {
			continue
		}
		latest, _ := g.Latest()
		out = append(out, GemSummary{Name: g.Name, Entries: len(g.Entries), Latest: latest.Version})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGem(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Entries)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gem(w, r)
	if !ok {
		return
	}
	version := chi.URLParam(r, "version")
	if e, ok := s.idx.Version(g.Name, version); ok {
		writeJSON(w, http.StatusOK, e)
		return
	}
	if e, ok := s.idx.Version(g.Name, semver.Coerce(version)); ok {
		writeJSON(w, http.StatusOK, e)
		return
	}
	writeError(w, http.StatusNotFound, gemerrors.New(gemerrors.ErrCodeNotFound, "version %s of %s not in index", version, g.Name))
}

// gem resolves the {name} parameter, writing a 404 when it is unknown.
func (s *Server) gem(w http.ResponseWriter, r *http.Request) (index.Gem, bool) {
	name := chi.URLParam(r, "name")
	g, ok := s.idx.Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, gemerrors.New(gemerrors.ErrCodeNotFound, "gem %s not in index", name))
	}
	return g, ok
}

// writeJSON encodes v without HTML escaping so requirement operators such
// as ">=" stay readable.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError reports err with its machine-readable code. Errors without one
// are reported as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, status int, err error) {
	code := gemerrors.GetCode(err)
	if code == "" {
		code = gemerrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: gemerrors.UserMessage(err), Code: string(code)})
}
