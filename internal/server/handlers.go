package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/engine"
)

type addNodeRequest struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Position canvas.Vec2    `json:"position"`
	Fields   map[string]any `json:"fields,omitempty"`
}

type setFieldRequest struct {
	Value any `json:"value"`
}

type connectionRequest struct {
	From canvas.PortRef `json:"from"`
	To   canvas.PortRef `json:"to"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewTypes(s.catalog.Registry()))
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewKinds(s.catalog))
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, viewCanvas(s.engine.Graph()))
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.engine.Graph()

	n, err := s.catalog.Create(req.Kind, req.Position)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name != "" {
		n.Name = req.Name
	}
	if err := g.AddNode(n); err != nil {
		s.writeError(w, r, err)
		return
	}
	for name, value := range req.Fields {
		if err := g.SetField(n.ID, name, value); err != nil {
			_ = g.RemoveNode(n.ID)
			s.writeError(w, r, err)
			return
		}
	}

	report, err := s.engine.RecalculateFrom(r.Context(), n.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.commit(w, r, http.StatusCreated, n.ID, report)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id := canvas.NodeID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.Graph().RemoveNode(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Former dependents now read defaults on the severed inputs.
	report, err := s.engine.RecalculateAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.commit(w, r, http.StatusOK, "", report)
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	id := canvas.NodeID(chi.URLParam(r, "id"))
	name := chi.URLParam(r, "name")

	var req setFieldRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.engine.Edit(r.Context(), id, name, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.commit(w, r, http.StatusOK, id, report)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.engine.Graph()

	if err := g.Connect(req.From, req.To); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.engine.RecalculateFrom(r.Context(), inputNode(g, req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.commit(w, r, http.StatusOK, "", report)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.engine.Graph()

	if err := g.Disconnect(req.From, req.To); err != nil {
		s.writeError(w, r, err)
		return
	}
	var report *engine.Report
	if id := inputNode(g, req); id != "" {
		var err error
		if report, err = s.engine.RecalculateFrom(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.commit(w, r, http.StatusOK, "", report)
}

func (s *Server) handleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.engine.RecalculateAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Report: report})
}

func (s *Server) handleRecalculateNode(w http.ResponseWriter, r *http.Request) {
	id := canvas.NodeID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.engine.RecalculateFrom(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Report: report})
}

// commit saves the session after a mutation and writes the result. The
// mutation has already been applied, so a failed save is reported as a
// warning alongside the success status. Called with mu held.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, status int, id canvas.NodeID, report *engine.Report) {
	res := result{Report: report}
	if err := s.save(r.Context()); err != nil {
		s.logger.Error("save session failed", "id", s.sessionID, "method", r.Method, "path", r.URL.Path, "error", err)
		res.Warning = "canvas not saved: " + err.Error()
	}
	g := s.engine.Graph()
	if n, ok := g.Node(id); ok {
		v := viewNode(g, n)
		res.Node = &v
	}
	writeJSON(w, status, res)
}

// inputNode returns the node owning the input end of a connection request,
// whichever order its ports were given in. Returns "" if neither end is a
// known input.
func inputNode(g *canvas.Graph, req connectionRequest) canvas.NodeID {
	for _, ref := range []canvas.PortRef{req.To, req.From} {
		if p, err := g.Port(ref); err == nil && p.IsInput() {
			return ref.Node
		}
	}
	return ""
}
