package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/nodes"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

func testCatalog(t *testing.T) *canvas.Catalog {
	t.Helper()
	cat := canvas.NewCatalog(nil)
	if err := nodes.Register(cat); err != nil {
		t.Fatal(err)
	}
	return cat
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type fixture struct {
	t     *testing.T
	srv   *Server
	http  *httptest.Server
	store session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(context.Background(), testCatalog(t), nil, Options{Sessions: store, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{t: t, srv: srv, http: ts, store: store}
}

// do sends a JSON request and decodes the JSON response into out, if given.
func (f *fixture) do(method, path string, body, out any) int {
	f.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			f.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.http.URL+path, r)
	if err != nil {
		f.t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		f.t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			f.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) addNode(kind string, fields map[string]any) canvas.NodeID {
	f.t.Helper()
	var res result
	status := f.do(http.MethodPost, "/nodes", addNodeRequest{Kind: kind, Fields: fields}, &res)
	if status != http.StatusCreated || res.Node == nil {
		f.t.Fatalf("POST /nodes %s = %d", kind, status)
	}
	return res.Node.ID
}

func (f *fixture) connect(from canvas.NodeID, fp int, to canvas.NodeID, tp int) (int, errorBody) {
	f.t.Helper()
	var body errorBody
	status := f.do(http.MethodPost, "/connections", connectionRequest{
		From: canvas.PortRef{Node: from, Port: fp},
		To:   canvas.PortRef{Node: to, Port: tp},
	}, &body)
	return status, body
}

func (f *fixture) output(id canvas.NodeID, port int) any {
	f.t.Helper()
	var cv canvasView
	f.do(http.MethodGet, "/canvas", nil, &cv)
	for _, n := range cv.Nodes {
		if n.ID == id {
			return n.Ports[port].Value
		}
	}
	f.t.Fatalf("node %s not in canvas", id)
	return nil
}

func TestChainOverHTTP(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(nodes.InputID, map[string]any{"value": 5})
	b := f.addNode(nodes.ScaleID, nil)
	c := f.addNode(nodes.OffsetID, nil)

	if status, body := f.connect(a, 0, b, 0); status != http.StatusOK {
		t.Fatalf("connect a→b = %d %+v", status, body)
	}
	if status, body := f.connect(b, 1, c, 0); status != http.StatusOK {
		t.Fatalf("connect b→c = %d %+v", status, body)
	}
	if got := f.output(c, 1); got != 11.0 {
		t.Errorf("C.Out = %v, want 11", got)
	}

	var res result
	if status := f.do(http.MethodPut, "/nodes/"+string(a)+"/fields/value", setFieldRequest{Value: 7}, &res); status != http.StatusOK {
		t.Fatalf("PUT field = %d", status)
	}
	if len(res.Report.Order) != 3 {
		t.Errorf("order = %v, want 3 nodes", res.Report.Order)
	}
	if got := f.output(c, 1); got != 15.0 {
		t.Errorf("C.Out = %v, want 15", got)
	}
}

func TestConnectRejections(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(nodes.ScaleID, nil)
	b := f.addNode(nodes.ScaleID, nil)
	if status, _ := f.connect(a, 1, b, 0); status != http.StatusOK {
		t.Fatalf("connect = %d", status)
	}

	tests := []struct {
		name   string
		from   canvas.NodeID
		fp     int
		to     canvas.NodeID
		tp     int
		status int
		code   errors.Code
	}{
		{"cycle", b, 1, a, 0, http.StatusConflict, errors.ErrCodeGraphCycle},
		{"direction", a, 0, b, 0, http.StatusUnprocessableEntity, errors.ErrCodeDirection},
		{"unknown node", "ghost", 1, b, 0, http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.connect(tt.from, tt.fp, tt.to, tt.tp)
			if status != tt.status || body.Code != tt.code {
				t.Errorf("status = %d code = %s, want %d %s", status, body.Code, tt.status, tt.code)
			}
		})
	}

	var cv canvasView
	f.do(http.MethodGet, "/canvas", nil, &cv)
	if len(cv.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(cv.Connections))
	}
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(nodes.InputID, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown kind", http.MethodPost, "/nodes", addNodeRequest{Kind: "mystery"}, http.StatusBadRequest},
		{"bad field type", http.MethodPost, "/nodes", addNodeRequest{Kind: nodes.InputID, Fields: map[string]any{"value": "x"}}, http.StatusBadRequest},
		{"unknown body field", http.MethodPost, "/nodes", map[string]any{"kind": nodes.InputID, "colour": 1}, http.StatusBadRequest},
		{"unknown node field", http.MethodPut, "/nodes/" + string(a) + "/fields/nope", setFieldRequest{Value: 1}, http.StatusNotFound},
		{"bad field value", http.MethodPut, "/nodes/" + string(a) + "/fields/value", setFieldRequest{Value: "lots"}, http.StatusBadRequest},
		{"field on missing node", http.MethodPut, "/nodes/ghost/fields/value", setFieldRequest{Value: 1}, http.StatusNotFound},
		{"remove missing node", http.MethodDelete, "/nodes/ghost", nil, http.StatusNotFound},
		{"recalc missing node", http.MethodPost, "/nodes/ghost/recalculate", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := f.do(tt.method, tt.path, tt.body, nil); status != tt.status {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, status, tt.status)
			}
		})
	}

	var cv canvasView
	f.do(http.MethodGet, "/canvas", nil, &cv)
	if len(cv.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1 (failed adds must not leave nodes behind)", len(cv.Nodes))
	}
}

func TestDisconnectAndRemove(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(nodes.InputID, map[string]any{"value": 3})
	b := f.addNode(nodes.DisplayID, nil)
	f.connect(a, 0, b, 0)
	if got := f.output(b, 1); got != 3.0 {
		t.Fatalf("Shown = %v, want 3", got)
	}

	req := connectionRequest{From: canvas.PortRef{Node: a, Port: 0}, To: canvas.PortRef{Node: b, Port: 0}}
	var res result
	if status := f.do(http.MethodDelete, "/connections", req, &res); status != http.StatusOK {
		t.Fatalf("DELETE /connections = %d", status)
	}
	// The display's required input is now unconnected.
	if res.Report == nil || len(res.Report.Failed) != 1 {
		t.Errorf("report = %+v, want one failure", res.Report)
	}
	if status := f.do(http.MethodDelete, "/connections", req, nil); status != http.StatusOK {
		t.Errorf("repeated DELETE /connections = %d", status)
	}

	if status := f.do(http.MethodDelete, "/nodes/"+string(a), nil, nil); status != http.StatusOK {
		t.Errorf("DELETE node = %d", status)
	}
	var cv canvasView
	f.do(http.MethodGet, "/canvas", nil, &cv)
	if len(cv.Nodes) != 1 || cv.Nodes[0].ID != b {
		t.Errorf("nodes = %+v", cv.Nodes)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	var kinds []kindView
	if status := f.do(http.MethodGet, "/kinds", nil, &kinds); status != http.StatusOK {
		t.Fatalf("GET /kinds = %d", status)
	}
	if len(kinds) != len(nodes.All()) || kinds[0].ID != nodes.InputID || kinds[0].Menu != "Float/Input" {
		t.Errorf("kinds = %+v", kinds)
	}

	var tv []typeView
	f.do(http.MethodGet, "/types", nil, &tv)
	if len(tv) == 0 || tv[0].Name != "Float" || tv[0].Color != "#00FFFF" {
		t.Errorf("types = %+v", tv)
	}

	var health map[string]string
	f.do(http.MethodGet, "/healthz", nil, &health)
	if health["status"] != "ok" || health["version"] == "" {
		t.Errorf("healthz = %v", health)
	}
}

func TestSessionRestoredOnStartup(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(nodes.InputID, map[string]any{"value": 4})
	b := f.addNode(nodes.ScaleID, nil)
	f.connect(a, 0, b, 0)

	again, err := New(context.Background(), testCatalog(t), nil, Options{Sessions: f.store, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	g := again.Graph()
	if g.Len() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("restored nodes=%d edges=%d", g.Len(), g.EdgeCount())
	}
	out, err := canvas.ValueAs[float64](g, canvas.PortRef{Node: b, Port: 1})
	if err != nil || out != 8 {
		t.Errorf("restored B.Out = %v, %v; want 8 after recalculation", out, err)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	f := newFixture(t)
	f.do(http.MethodGet, "/healthz", nil, nil)
	f.do(http.MethodDelete, "/nodes/ghost", nil, nil)

	want := []int{http.StatusOK, http.StatusNotFound}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != want[0] || hooks.statuses[1] != want[1] {
		t.Errorf("statuses = %v, want %v", hooks.statuses, want)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeNotFound:     http.StatusNotFound,
		errors.ErrCodeGraphBusy:    http.StatusConflict,
		errors.ErrCodeTypeMismatch: http.StatusUnprocessableEntity,
		errors.ErrCodeInvalidWrite: http.StatusUnprocessableEntity,
		errors.ErrCodeInvalidInput: http.StatusBadRequest,
		errors.ErrCodeStorage:      http.StatusInternalServerError,
		"":                         http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

// flakyStore fails Set while broken is true.
type flakyStore struct {
	session.Store
	broken atomic.Bool
}

func (s *flakyStore) Set(ctx context.Context, sess *session.Session) error {
	if s.broken.Load() {
		return errors.New(errors.ErrCodeStorage, "disk full")
	}
	return s.Store.Set(ctx, sess)
}

func TestSaveFailureKeepsEdit(t *testing.T) {
	inner, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := &flakyStore{Store: inner}
	srv, err := New(context.Background(), testCatalog(t), nil, Options{Sessions: store, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	f := &fixture{t: t, srv: srv, http: ts, store: store}

	store.broken.Store(true)
	var res result
	status := f.do(http.MethodPost, "/nodes", addNodeRequest{Kind: nodes.InputID}, &res)
	if status != http.StatusCreated || res.Node == nil {
		t.Fatalf("POST /nodes = %d, %+v", status, res)
	}
	if !strings.Contains(res.Warning, "not saved") {
		t.Errorf("warning = %q, want save failure", res.Warning)
	}
	if n := srv.Graph().Len(); n != 1 {
		t.Errorf("graph has %d nodes, want the added node kept", n)
	}

	// The next successful save persists both nodes.
	store.broken.Store(false)
	res = result{}
	if status := f.do(http.MethodPost, "/nodes", addNodeRequest{Kind: nodes.ScaleID}, &res); status != http.StatusCreated {
		t.Fatalf("POST /nodes = %d", status)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning %q", res.Warning)
	}
	again, err := New(context.Background(), testCatalog(t), nil, Options{Sessions: inner, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if n := again.Graph().Len(); n != 2 {
		t.Errorf("restored %d nodes, want 2", n)
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q: %v", rec.Body.String(), err)
	}
	if body.Code != errors.ErrCodeInternal || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}
