package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebIDE/backend/internal/shared/id"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	outBuffer  = 16
)

// Recorder receives stream metrics. monitoring.Metrics implements it.
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

type nopRecorder struct{}

func (nopRecorder) IncWSConnections()               {}
func (nopRecorder) DecWSConnections()               {}
func (nopRecorder) RecordWSMessage(string, string) {}

// Options configures a Handler.
type Options struct {
	// MaxMessageBytes bounds a single client frame.
	MaxMessageBytes int64
	Logger          *logging.Logger
	Metrics         Recorder
}

// Handler serves the workspace command stream.
type Handler struct {
	manager  *session.Manager
	upgrader websocket.Upgrader
	maxMsg   int64
	logger   *logging.Logger
	metrics  Recorder
}

// NewHandler creates a stream handler over manager.
func NewHandler(manager *session.Manager, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	var metrics Recorder = nopRecorder{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	maxMsg := opts.MaxMessageBytes
	if maxMsg <= 0 {
		maxMsg = 1 << 20
	}
	return &Handler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		maxMsg:  maxMsg,
		logger:  logger.Named("ws"),
		metrics: metrics,
	}
}

// HandleConnection upgrades GET /workspaces/:id/stream. Every change to
// the workspace, from this or any other client, is pushed as a snapshot.
func (h *Handler) HandleConnection(c *gin.Context) {
	w, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
			"code":  session.Outcome(err),
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := id.NewConnID()
	cl := &client{
		conn:    conn,
		ws:      w,
		out:     make(chan ServerFrame, outBuffer),
		quit:    make(chan struct{}),
		log:     h.logger.Workspace(w.ID()).With(zap.String("conn", connID.String())),
		metrics: h.metrics,
	}

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	cl.log.Info("stream connected")

	changes, unsubscribe := w.Subscribe()
	defer unsubscribe()

	stop := make(chan struct{})
	go cl.writeLoop(changes, stop)

	cl.enqueue(ServerFrame{
		Type:      FrameSystem,
		Workspace: w.ID(),
		Conn:      connID.String(),
		Message:   "connected",
	})
	snap := w.Snapshot()
	cl.enqueue(ServerFrame{Type: FrameSnapshot, Snapshot: &snap})

	cl.readLoop(h.maxMsg)
	close(stop)
	<-cl.quit
	cl.log.Info("stream closed")
}

type client struct {
	conn    *websocket.Conn
	ws      *session.Workspace
	out     chan ServerFrame
	quit    chan struct{}
	log     *logging.Logger
	metrics Recorder
}

// enqueue hands a frame to the writer. It reports false once the writer
// has exited.
func (cl *client) enqueue(f ServerFrame) bool {
	select {
	case cl.out <- f:
		return true
	case <-cl.quit:
		return false
	}
}

func (cl *client) readLoop(maxMsg int64) {
	cl.conn.SetReadLimit(maxMsg)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.log.Debug("stream read error", zap.Error(err))
			}
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame ClientFrame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			cl.metrics.RecordWSMessage("in", "invalid")
			if !cl.enqueue(ServerFrame{Type: FrameError, Code: "bad_frame", Error: "invalid frame: " + err.Error()}) {
				return
			}
			continue
		}
		cl.metrics.RecordWSMessage("in", frame.Type)

		if !cl.handle(frame) {
			return
		}
	}
}

// handle applies one client frame. It reports false when the writer is gone.
func (cl *client) handle(frame ClientFrame) bool {
	switch frame.Type {
	case FramePing:
		return cl.enqueue(ServerFrame{Type: FramePong, Seq: frame.Seq})
	case FrameSnapshot:
		snap := cl.ws.Snapshot()
		return cl.enqueue(ServerFrame{Type: FrameSnapshot, Seq: frame.Seq, Snapshot: &snap})
	}

	cmd, ok := frame.command()
	if !ok {
		return cl.enqueue(ServerFrame{
			Type:  FrameError,
			Code:  "unknown_command",
			Error: "unknown message type " + frame.Type,
			Seq:   frame.Seq,
		})
	}

	// Success is delivered by the change notification.
	if _, err := cl.ws.Apply(cmd); err != nil {
		return cl.enqueue(ServerFrame{
			Type:  FrameError,
			Code:  session.Outcome(err),
			Error: err.Error(),
			Seq:   frame.Seq,
		})
	}
	return true
}

func (cl *client) writeLoop(changes <-chan struct{}, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(cl.quit)
		cl.conn.Close()
	}()

	for {
		select {
		case f := <-cl.out:
			if err := cl.write(f); err != nil {
				return
			}
		case _, ok := <-changes:
			if !ok {
				_ = cl.write(ServerFrame{Type: FrameSystem, Message: "workspace closed"})
				cl.closeWith(websocket.CloseNormalClosure, "workspace closed")
				return
			}
			snap := cl.ws.Snapshot()
			if err := cl.write(ServerFrame{Type: FrameSnapshot, Snapshot: &snap}); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			cl.closeWith(websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (cl *client) write(f ServerFrame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		cl.log.Error("encode frame", zap.String("type", f.Type), zap.Error(err))
		return err
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	cl.metrics.RecordWSMessage("out", f.Type)
	return nil
}

func (cl *client) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = cl.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
