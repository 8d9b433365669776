package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/cityradius/internal/adapters/nats"
	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/pkg/geospatial"
	"github.com/samirrijal/cityradius/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// channelSubjects maps client channel names to NATS subjects.
var channelSubjects = map[string]string{
	"all":    natsadapter.SubjectQueryAll,
	"nearby": natsadapter.SubjectNearby,
}

// wsRequest is a client command.
//
//	{"action":"subscribe","channel":"nearby"}
//	{"action":"watch","lat":39.74,"lon":-84.53,"radius_miles":50}
type wsRequest struct {
	Action      string  `json:"action"`
	Channel     string  `json:"channel"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RadiusMiles float64 `json:"radius_miles"`
}

// watchArea limits relayed events to queries whose origin is within
// RadiusMiles of Center.
type watchArea struct {
	Center      domain.Position
	RadiusMiles float64
}

func (w *watchArea) admits(data []byte) bool {
	if w == nil {
		return true
	}
	var q domain.NearbyQuery
	if err := json.Unmarshal(data, &q); err != nil || q.ExecutedAt.IsZero() {
		return false
	}
	return geospatial.Distance(w.Center, q.Origin) <= w.RadiusMiles
}

// wsClient is one WebSocket connection and its NATS subscriptions.
type wsClient struct {
	conn *websocket.Conn
	nc   *nats.Conn
	log  *slog.Logger

	mu    sync.Mutex // guards conn writes and watch
	watch *watchArea
	subs  map[string]*nats.Subscription // subject -> subscription; read loop only
}

func (cl *wsClient) write(messageType int, data []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteMessage(messageType, data)
}

func (cl *wsClient) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = cl.write(websocket.TextMessage, data)
}

func (cl *wsClient) reply(key, value string, kv ...string) {
	msg := map[string]string{key: value}
	for i := 0; i+1 < len(kv); i += 2 {
		msg[kv[i]] = kv[i+1]
	}
	cl.send(msg)
}

func (cl *wsClient) relay(msg *nats.Msg) {
	cl.mu.Lock()
	w := cl.watch
	cl.mu.Unlock()
	if !w.admits(msg.Data) {
		return
	}
	_ = cl.write(websocket.TextMessage, msg.Data)
}

// subscribe replaces any held subscription that overlaps subject, so each
// event is relayed once: "nearby" narrows "all", "all" widens "nearby".
func (cl *wsClient) subscribe(subject string) error {
	if _, ok := cl.subs[subject]; ok {
		return nil
	}
	s, err := cl.nc.Subscribe(subject, cl.relay)
	if err != nil {
		return err
	}
	for _, held := range overlapping(cl.subs, subject) {
		_ = cl.subs[held].Unsubscribe()
		delete(cl.subs, held)
	}
	cl.subs[subject] = s
	return nil
}

// overlapping returns the held subjects that share events with subject.
func overlapping[V any](held map[string]V, subject string) []string {
	var out []string
	for h := range held {
		if h != subject && (subjectCovers(h, subject) || subjectCovers(subject, h)) {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

// subjectCovers reports whether every message on subject also matches pattern.
// Only the trailing ">" wildcard is understood.
func subjectCovers(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, ">")
	return ok && strings.HasPrefix(subject, prefix) && len(subject) > len(prefix)
}

func (cl *wsClient) unsubscribeAll() {
	for subject, s := range cl.subs {
		_ = s.Unsubscribe()
		delete(cl.subs, subject)
	}
}

func (cl *wsClient) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := cl.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (cl *wsClient) handle(req wsRequest) {
	switch req.Action {
	case "subscribe", "unsubscribe":
		channel := req.Channel
		if channel == "" {
			channel = "all"
		}
		subject, ok := channelSubjects[channel]
		if !ok {
			cl.reply("error", "unknown channel: "+channel)
			return
		}
		if req.Action == "subscribe" {
			if err := cl.subscribe(subject); err != nil {
				cl.reply("error", "subscribe failed: "+err.Error())
				return
			}
			cl.reply("status", "subscribed", "subject", subject)
			return
		}
		s, ok := cl.subs[subject]
		if !ok {
			cl.reply("error", "not subscribed to "+subject)
			return
		}
		_ = s.Unsubscribe()
		delete(cl.subs, subject)
		cl.reply("status", "unsubscribed", "subject", subject)

	case "watch":
		if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 || req.RadiusMiles <= 0 {
			cl.reply("error", "watch needs lat, lon and a positive radius_miles")
			return
		}
		cl.mu.Lock()
		cl.watch = &watchArea{Center: domain.NewPosition("", req.Lat, req.Lon), RadiusMiles: req.RadiusMiles}
		cl.mu.Unlock()
		cl.reply("status", "watching")

	case "unwatch":
		cl.mu.Lock()
		cl.watch = nil
		cl.mu.Unlock()
		cl.reply("status", "unwatched")

	default:
		cl.reply("error", "unknown action: "+req.Action)
	}
}

// WebSocketHandler relays query events from NATS to WebSocket clients.
// Every client starts subscribed to all query events; subscribing to a
// narrower channel replaces that default.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		cl := &wsClient{
			conn: c,
			nc:   nc,
			log:  slog.Default().With("remote_addr", c.RemoteAddr().String()),
			subs: make(map[string]*nats.Subscription),
		}
		if nc == nil {
			cl.reply("error", "event stream unavailable")
			return
		}
		if err := cl.subscribe(natsadapter.SubjectQueryAll); err != nil {
			cl.log.Error("ws default subscribe failed", "error", err)
			return
		}
		defer cl.unsubscribeAll()
		cl.log.Info("ws client connected")

		done := make(chan struct{})
		defer close(done)
		go cl.keepAlive(done)

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			var req wsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				cl.reply("error", "invalid JSON")
				continue
			}
			cl.handle(req)
		}
		cl.log.Info("ws client disconnected")
	}
}
