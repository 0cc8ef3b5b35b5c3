package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/equipneeds/pkg/buildinfo"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/needs"
	"github.com/matzehuels/equipneeds/pkg/render/recipetree"
	"github.com/matzehuels/equipneeds/pkg/session"
	"github.com/matzehuels/equipneeds/pkg/voyage"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type needsResponse struct {
	Session         string `json:"session"`
	Digest          string `json:"digest"`
	CatalogComplete bool   `json:"catalog_complete"`
	*needs.Report
}

func (s *Server) handleNeeds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := parseOptions(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := parseIDs(q.Get("crew"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.loadPlayer(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, sess, err := s.sessions.Resolve(r.Context(), snap, ids, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(ids) > 0 && report.Crew == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeCrewNotFound, "no crew matches %v", ids))
		return
	}

	writeJSON(w, http.StatusOK, needsResponse{
		Session:         sess.ID.String(),
		Digest:          sess.Digest,
		CatalogComplete: sess.Report.Complete,
		Report:          report,
	})
}

type catalogResponse struct {
	Session    string         `json:"session"`
	Digest     string         `json:"digest"`
	Archetypes int            `json:"archetypes"`
	BuiltAt    time.Time      `json:"built_at"`
	Report     catalog.Report `json:"report"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Current()
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNotFound, err, "no catalog session"))
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Session:    sess.ID.String(),
		Digest:     sess.Digest,
		Archetypes: sess.Catalog.Len(),
		BuiltAt:    sess.BuiltAt,
		Report:     sess.Report,
	})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.sessions.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid archetype id %q", chi.URLParam(r, "id")))
		return
	}
	depth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		if depth, err = strconv.Atoi(v); err != nil || depth < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid depth %q", v))
			return
		}
	}

	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tree, err := recipetree.Walk(sess.Catalog, id, recipetree.Options{MaxDepth: depth, Detailed: true})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dot := tree.DOT()
	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := recipetree.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render tree"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
	}
}

func (s *Server) handleShips(w http.ResponseWriter, r *http.Request) {
	snap, err := s.players.Player(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	descs := snap.Character.VoyageDescriptions
	if len(descs) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no voyage available"))
		return
	}
	ranked := voyage.BestShips(snap.Character.Ships, descs[0], voyage.Options{TraitBonus: s.opts.TraitBonus})
	writeJSON(w, http.StatusOK, map[string]any{
		"ship_trait": descs[0].ShipTrait,
		"ships":      ranked,
	})
}

// session returns the active session, loading one from the current player
// snapshot when there is none.
func (s *Server) session(ctx context.Context) (*session.Session, error) {
	sess, err := s.sessions.Current()
	if err == nil {
		return sess, nil
	}
	if !stderrors.Is(err, session.ErrNoCatalog) {
		return nil, err
	}
	snap, err := s.loadPlayer(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Load(ctx, snap)
}

// parseOptions reads the needs filters from the query string.
func parseOptions(q url.Values) (needs.Options, error) {
	var opts needs.Options
	flags := []struct {
		name string
		dst  *bool
	}{
		{"only_needed", &opts.OnlyNeeded},
		{"faction", &opts.OnlyFaction},
		{"cadet", &opts.Cadetable},
		{"all_levels", &opts.AllLevels},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s value %q", f.name, v)
		}
		*f.dst = b
	}
	opts.Text = q.Get("q")
	return opts, nil
}

// parseIDs parses a comma separated crew id list.
func parseIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid crew id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
