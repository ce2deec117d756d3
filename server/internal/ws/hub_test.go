package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/compute"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	wsHub "github.com/launchdash/launchdash/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

// reply is a decoded server message with typed views.
type reply struct {
	Event string          `json:"event"`
	Seq   uint64          `json:"seq"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type countingMetrics struct {
	mu      sync.Mutex
	clients int
	filters int
}

func (m *countingMetrics) SetClients(n int) { m.mu.Lock(); m.clients = n; m.mu.Unlock() }
func (m *countingMetrics) IncFilters()      { m.mu.Lock(); m.filters++; m.mu.Unlock() }

func (m *countingMetrics) get() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients, m.filters
}

func newEngine(t *testing.T) *compute.Engine {
	t.Helper()
	ds, err := dataset.New("test", []types.LaunchRecord{
		{Site: types.SiteKSCLC39A, PayloadMassKg: 500, Outcome: true, BoosterCategory: "FT"},
		{Site: types.SiteKSCLC39A, PayloadMassKg: 1500, Outcome: false, BoosterCategory: "FT"},
		{Site: types.SiteKSCLC39A, PayloadMassKg: 2500, Outcome: true, BoosterCategory: "B4"},
	})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return compute.NewEngine(ds)
}

// startHub starts a test HTTP server with the hub as its handler.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// URL, the hub, and a cleanup function.
func startHub(t *testing.T, opts ...wsHub.Option) (wsURL string, hub *wsHub.Hub, settings *config.Settings, cancel func()) {
	t.Helper()

	settings = config.NewSettings(config.Defaults().Dashboard)
	hub = wsHub.New(newEngine(t), settings, opts...)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(hub)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, settings, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// dialReady connects and consumes the dataset and initial views events.
func dialReady(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn := dial(t, wsURL)
	readReply(t, conn)
	readReply(t, conn)
	return conn
}

// readReply reads one message from conn with a short deadline.
func readReply(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var r reply
	if err := json.Unmarshal(msg, &r); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
	return r
}

func views(t *testing.T, r reply) compute.Views {
	t.Helper()
	if r.Event != wsHub.EventViews {
		t.Fatalf("event: got %q (error %q), want views", r.Event, r.Error)
	}
	var v compute.Views
	if err := json.Unmarshal(r.Data, &v); err != nil {
		t.Fatalf("unmarshal views: %v", err)
	}
	return v
}

func sendFilter(t *testing.T, conn *websocket.Conn, req wsHub.Request) {
	t.Helper()
	req.Type = wsHub.RequestFilter
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesDatasetThenDefaultViews(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dial(t, wsURL)

	first := readReply(t, conn)
	if first.Event != wsHub.EventDataset {
		t.Fatalf("first event: got %q, want dataset", first.Event)
	}
	var ds map[string]interface{}
	json.Unmarshal(first.Data, &ds) //nolint:errcheck
	if ds["records"] != float64(3) {
		t.Errorf("records: got %v, want 3", ds["records"])
	}

	second := readReply(t, conn)
	if second.Seq != 0 {
		t.Errorf("seq: got %d, want 0", second.Seq)
	}
	v := views(t, second)
	if v.Filter.Site != types.All || v.Filter.Payload != (types.PayloadRange{Low: 500, High: 2500}) {
		t.Errorf("default filter: got %+v", v.Filter)
	}
	if len(v.Scatter.Points) != 3 {
		t.Errorf("points: got %d, want 3", len(v.Scatter.Points))
	}
}

func TestHub_FilterChange_RecomputesBothViews(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dialReady(t, wsURL)

	sendFilter(t, conn, wsHub.Request{Seq: 7, Site: "KSC LC-39A", Payload: []types.Bound{600, 2000}})
	r := readReply(t, conn)
	if r.Seq != 7 {
		t.Errorf("seq: got %d, want 7", r.Seq)
	}
	v := views(t, r)

	if v.Summary.Kind != compute.KindOutcomeSplit {
		t.Errorf("summary kind: got %q", v.Summary.Kind)
	}
	if n, _ := v.Summary.Count(compute.LabelSuccess); n != 2 {
		t.Errorf("Success: got %d, want 2", n)
	}
	if len(v.Scatter.Points) != 1 || v.Scatter.Points[0].PayloadMassKg != 1500 {
		t.Errorf("points: got %+v, want only the 1500 kg launch", v.Scatter.Points)
	}
}

func TestHub_RepliesInOrder(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dialReady(t, wsURL)

	for seq := uint64(1); seq <= 5; seq++ {
		sendFilter(t, conn, wsHub.Request{Seq: seq, Payload: []types.Bound{0, types.Bound(seq) * 500}})
	}
	for seq := uint64(1); seq <= 5; seq++ {
		r := readReply(t, conn)
		if r.Seq != seq {
			t.Fatalf("reply %d: got seq %d", seq, r.Seq)
		}
	}
}

func TestHub_AbsentSite_EmptyViews(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dialReady(t, wsURL)

	sendFilter(t, conn, wsHub.Request{Seq: 1, Site: "VAFB SLC-4E"})
	v := views(t, readReply(t, conn))
	if len(v.Summary.Buckets) != 0 || len(v.Scatter.Points) != 0 {
		t.Errorf("got %+v, want empty views", v)
	}
}

func TestHub_Errors(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dialReady(t, wsURL)

	cases := []struct {
		name string
		raw  string
		seq  uint64
		want string
	}{
		{"nan bound", `{"type":"filter","seq":3,"payload":[0,"NaN"]}`, 3, "invalid filter"},
		{"short payload", `{"type":"filter","seq":4,"payload":[1]}`, 4, "payload must be"},
		{"unknown type", `{"type":"subscribe","seq":5}`, 5, "unknown message type"},
		{"malformed", `{"type":`, 0, "malformed message"},
		{"text bound", `{"type":"filter","seq":6,"payload":["0","heavy"]}`, 0, "malformed message"},
	}
	for _, tc := range cases {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.raw)); err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		r := readReply(t, conn)
		if r.Event != wsHub.EventError {
			t.Errorf("%s: event %q, want error", tc.name, r.Event)
			continue
		}
		if r.Seq != tc.seq {
			t.Errorf("%s: seq %d, want %d", tc.name, r.Seq, tc.seq)
		}
		if !strings.Contains(r.Error, tc.want) {
			t.Errorf("%s: error %q, want it to contain %q", tc.name, r.Error, tc.want)
		}
	}

	// The connection stays usable after errors.
	sendFilter(t, conn, wsHub.Request{Seq: 9})
	views(t, readReply(t, conn))
}

func TestHub_SiteAndBoundsParsedLikeREST(t *testing.T) {
	wsURL, _, _, _ := startHub(t)
	conn := dialReady(t, wsURL)

	raw := `{"type":"filter","seq":3,"site":"  KSC LC-39A  ","payload":[0,"+Inf"]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v := views(t, readReply(t, conn))
	if v.Filter.Site != types.Select(types.SiteKSCLC39A) {
		t.Errorf("site: got %q, want trimmed KSC LC-39A", v.Filter.Site)
	}
	if len(v.Scatter.Points) != 3 {
		t.Errorf("points: got %d, want 3 over an open range", len(v.Scatter.Points))
	}

	raw = `{"type":"filter","seq":4,"site":"   ","payload":["-Inf","inf"]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v = views(t, readReply(t, conn))
	if v.Filter.Site != types.All {
		t.Errorf("blank site: got %q, want the default ALL", v.Filter.Site)
	}
}

func TestHub_DefaultSiteFollowsSettings(t *testing.T) {
	wsURL, _, settings, _ := startHub(t)
	d := settings.Get()
	d.DefaultSite = types.Select(types.SiteKSCLC39A)
	settings.Set(d)

	conn := dialReady(t, wsURL)
	sendFilter(t, conn, wsHub.Request{Seq: 1})
	v := views(t, readReply(t, conn))
	if v.Filter.Site != types.Select(types.SiteKSCLC39A) {
		t.Errorf("site: got %q, want the configured default", v.Filter.Site)
	}
}

func TestHub_BroadcastSettings(t *testing.T) {
	wsURL, hub, _, _ := startHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dialReady(t, wsURL)
	}
	time.Sleep(10 * time.Millisecond)

	d := config.Defaults().Dashboard
	d.Title = "Reloaded"
	hub.BroadcastSettings(d)

	for i, conn := range conns {
		r := readReply(t, conn)
		if r.Event != wsHub.EventSettings {
			t.Errorf("client %d: event %q, want settings", i, r.Event)
			continue
		}
		var got config.Dashboard
		json.Unmarshal(r.Data, &got) //nolint:errcheck
		if got.Title != "Reloaded" {
			t.Errorf("client %d: title %q", i, got.Title)
		}
	}
}

func TestHub_CountClients_MultipleClients(t *testing.T) {
	m := &countingMetrics{}
	wsURL, hub, _, _ := startHub(t, wsHub.WithMetrics(m))

	for i := 0; i < 3; i++ {
		dialReady(t, wsURL)
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
	if n, _ := m.get(); n != 3 {
		t.Errorf("metrics clients: got %d, want 3", n)
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _, _ := startHub(t)

	conn := dialReady(t, wsURL)
	time.Sleep(10 * time.Millisecond)

	if n := hub.Count(); n != 1 {
		t.Errorf("Count before disconnect: got %d, want 1", n)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond) // let readPump detect the close

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after disconnect: got %d, want 0", n)
	}
}

func TestHub_MetricsCountFilters(t *testing.T) {
	m := &countingMetrics{}
	wsURL, _, _, _ := startHub(t, wsHub.WithMetrics(m))
	conn := dialReady(t, wsURL)

	sendFilter(t, conn, wsHub.Request{Seq: 1})
	sendFilter(t, conn, wsHub.Request{Seq: 2})
	readReply(t, conn)
	readReply(t, conn)

	if _, n := m.get(); n != 2 {
		t.Errorf("filters: got %d, want 2", n)
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, _, cancel := startHub(t)

	conn := dialReady(t, wsURL)
	time.Sleep(10 * time.Millisecond)

	cancel() // signal shutdown

	// After cancel, hub should close all clients.
	time.Sleep(50 * time.Millisecond)
	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newEngine(t), config.NewSettings(config.Defaults().Dashboard))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// Plain HTTP GET without WebSocket upgrade headers gets 400.
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
