package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/awscfgdiagram/orthoroute/pkg/buildinfo"
	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
	"github.com/awscfgdiagram/orthoroute/pkg/store"
)

// =============================================================================
// Health and stateless routing
// =============================================================================

type healthResponse struct {
	Status string         `json:"status" msgpack:"status"`
	Build  buildinfo.Info `json:"build" msgpack:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) pipelineOptions(formats ...string) pipeline.Options {
	return pipeline.Options{Routing: s.cfg.Routing, Formats: formats, Logger: s.cfg.Logger}
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rd, err := s.cfg.Runner.Route(r.Context(), d, s.pipelineOptions())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rd)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.pipelineOptions(format)
	opts.EdgeLabels = r.URL.Query().Get("edge_labels") == "true"
	opts.Engine = r.URL.Query().Get("engine")
	res, err := s.cfg.Runner.Execute(r.Context(), d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Diagram-Hash", res.DiagramHash)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

// =============================================================================
// Stored diagrams
// =============================================================================

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, list)
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	d.Touch()
	if err := s.cfg.Store.Put(r.Context(), id, d); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, d)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, d)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRouteStored(w http.ResponseWriter, r *http.Request) {
	d, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rd, err := s.cfg.Runner.Route(r.Context(), d, s.pipelineOptions())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rd)
}

// =============================================================================
// Editing sessions
// =============================================================================

type openSessionRequest struct {
	// DiagramID opens a stored diagram.
	DiagramID string `json:"diagramId"`
	// Diagram opens an unsaved diagram. Ignored when DiagramID is set.
	Diagram json.RawMessage `json:"diagram"`
}

// sessionResponse is a session without its full routed document: clients
// already hold the diagram and only need the routes.
type sessionResponse struct {
	ID         string                      `json:"id" msgpack:"id"`
	DiagramID  string                      `json:"diagramId,omitempty" msgpack:"diagramId,omitempty"`
	Generation uint64                      `json:"generation" msgpack:"generation"`
	Routes     map[string]route.RoutedEdge `json:"routes" msgpack:"routes"`
	Dangling   []string                    `json:"dangling,omitempty" msgpack:"dangling,omitempty"`
	Stats      route.Stats                 `json:"stats" msgpack:"stats"`
}

func newSessionResponse(id, diagramID string, rd *diagram.Routed) sessionResponse {
	return sessionResponse{
		ID:         id,
		DiagramID:  diagramID,
		Generation: rd.Generation,
		Routes:     rd.Routes,
		Dangling:   rd.Dangling,
		Stats:      rd.Stats,
	}
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	var (
		d   *diagram.Diagram
		err error
	)
	switch {
	case req.DiagramID != "":
		d, err = s.cfg.Store.Get(r.Context(), req.DiagramID)
	case len(req.Diagram) > 0:
		d, err = diagram.UnmarshalDiagram(req.Diagram)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "diagramId or diagram is required")
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.cfg.Sessions.Open(r.Context(), req.DiagramID, d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, newSessionResponse(sess.ID, sess.DiagramID, sess.Routed))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, newSessionResponse(sess.ID, sess.DiagramID, sess.Routed))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moveRequest moves a node by (dx, dy), or to (x, y) when both are set.
type moveRequest struct {
	NodeID string   `json:"nodeId"`
	DX     float64  `json:"dx"`
	DY     float64  `json:"dy"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moveRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.NodeID == "" {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "nodeId is required"))
		return
	}

	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var rd *diagram.Routed
	if req.X != nil && req.Y != nil {
		rd, err = s.cfg.Sessions.MoveTo(r.Context(), id, req.NodeID, *req.X, *req.Y)
	} else {
		rd, err = s.cfg.Sessions.Move(r.Context(), id, req.NodeID, req.DX, req.DY)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, newSessionResponse(id, sess.DiagramID, rd))
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	target := sess.DiagramID
	if target == "" {
		target = r.URL.Query().Get("as")
	}
	if target == "" {
		target = store.NewID()
	}
	if err := s.cfg.Store.Put(r.Context(), target, sess.Diagram); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"id": target})
}
