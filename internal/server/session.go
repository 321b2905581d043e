package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/observability"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
	"github.com/tsa-lab/tsaview/pkg/render/sink"
)

// Message types a client sends.
const (
	msgLoad            = "load"
	msgResize          = "resize"
	msgClickNode       = "click-node"
	msgClickEdge       = "click-edge"
	msgClickBackground = "click-background"
)

// Reply types the server sends.
const (
	replyHello = "hello"
	replyScene = "scene"
	replyError = "error"
)

// sessionRequest is one client message. Load takes either a store index in
// Graph or an inline Document.
type sessionRequest struct {
	Type     string          `json:"type"`
	Graph    *int            `json:"graph,omitempty"`
	Document *graph.Document `json:"document,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Node     int             `json:"node,omitempty"`
	From     int             `json:"from,omitempty"`
	To       int             `json:"to,omitempty"`
}

// sessionReply answers every request. Scene is set when the view changed.
type sessionReply struct {
	Type      string      `json:"type"`
	Session   string      `json:"session"`
	State     string      `json:"state,omitempty"`
	Selection string      `json:"selection,omitempty"`
	Scene     *sink.Scene `json:"scene,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      errors.Code `json:"code,omitempty"`
}

// session is one WebSocket connection and the view it drives.
type session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	view   *graphview.View
	logger *log.Logger
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.opts.AllowedOrigins, "*") ||
				slices.Contains(s.opts.AllowedOrigins, origin)
		},
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.opts.MaxMessageSize)

	id := uuid.NewString()
	var opts []graphview.ViewOption
	if s.opts.Animate {
		opts = append(opts, graphview.WithAnimator(scene.Timed{}))
	}
	if s.opts.Color != "" {
		opts = append(opts, graphview.WithColor(s.opts.Color))
	}
	sess := &session{
		id:     id,
		server: s,
		conn:   conn,
		view:   graphview.NewView(id, s.opts.Width, s.opts.Height, opts...),
		logger: s.logger.With("session", id[:8]),
	}
	sess.view.Renderer.Logger = sess.logger

	ctx := r.Context()
	s.sessions.Add(1)
	observability.Server().OnSession(ctx, id, true)
	defer func() {
		s.sessions.Add(-1)
		observability.Server().OnSession(ctx, id, false)
	}()

	sess.logger.Debug("session opened")
	if !sess.send(sessionReply{Type: replyHello, State: "idle", Selection: "none"}) {
		return
	}
	sess.run(ctx)
	sess.logger.Debug("session closed")
}

func (ss *session) run(ctx context.Context) {
	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ss.logger.Warn("websocket read", "err", err)
			}
			return
		}

		var req sessionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid message")
			if !ss.sendError(err) {
				return
			}
			continue
		}

		if err := ss.handle(ctx, req); err != nil {
			if !ss.sendError(err) {
				return
			}
			continue
		}
		if !ss.sendScene() {
			return
		}
	}
}

// handle applies one request to the view.
func (ss *session) handle(ctx context.Context, req sessionRequest) error {
	v := ss.view
	switch req.Type {
	case msgLoad:
		doc, err := ss.document(ctx, req)
		if err != nil {
			return err
		}
		if req.Width > 0 && req.Height > 0 {
			v.Surface.Resize(req.Width, req.Height)
		}
		return v.Load(ctx, doc)
	case msgResize:
		return v.Resize(ctx, req.Width, req.Height)
	case msgClickNode:
		return v.Click(ctx, scene.NodeKey(req.Node))
	case msgClickEdge:
		kind := scene.KindEdge
		if req.From == req.To {
			kind = scene.KindSelfEdge
		}
		return v.Click(ctx, scene.Key{Kind: kind, From: req.From, To: req.To})
	case msgClickBackground:
		v.ClickBackground(ctx)
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", req.Type)
	}
}

func (ss *session) document(ctx context.Context, req sessionRequest) (graph.Document, error) {
	switch {
	case req.Document != nil:
		return *req.Document, nil
	case req.Graph != nil:
		return ss.server.store.Graph(ctx, *req.Graph)
	default:
		return graph.Document{}, errors.New(errors.ErrCodeInvalidInput, "load needs a graph index or a document")
	}
}

func (ss *session) sendScene() bool {
	sel := ss.view.Overlay.Selection()
	jsonOpts := []sink.JSONOption{sink.WithJSONSelection(sel.String())}
	if ss.server.opts.Animate {
		jsonOpts = append(jsonOpts, sink.WithJSONTransitions())
	}
	snap := sink.Snapshot(ss.view.Surface, jsonOpts...)
	return ss.send(sessionReply{
		Type:      replyScene,
		State:     sel.State.String(),
		Selection: sel.String(),
		Scene:     &snap,
	})
}

func (ss *session) sendError(err error) bool {
	sel := ss.view.Overlay.Selection()
	return ss.send(sessionReply{
		Type:      replyError,
		State:     sel.State.String(),
		Selection: sel.String(),
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
	})
}

func (ss *session) send(reply sessionReply) bool {
	reply.Session = ss.id
	if err := ss.conn.WriteJSON(reply); err != nil {
		ss.logger.Warn("websocket write", "err", err)
		return false
	}
	return true
}
