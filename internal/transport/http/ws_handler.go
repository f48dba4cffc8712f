package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"regexp"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/diagramhub/internal/config"
	"github.com/vovakirdan/diagramhub/internal/core"
	"github.com/vovakirdan/diagramhub/internal/utils"
)

const wsPathPrefix = "/ws/diagram/"

// Room names are one or more Unicode letters, digits or underscores.
var roomNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

func validRoomName(name string) bool {
	return roomNamePattern.MatchString(name)
}

// roomFromPath extracts the room name from /ws/diagram/{room} with an
// optional trailing slash.
func roomFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, wsPathPrefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/")
	return rest, validRoomName(rest)
}

// WSHandler upgrades HTTP connections and bridges them to a core.Session.
type WSHandler struct {
	registry *core.Registry
	obs      core.Observer
	cfg      *config.Config
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. obs may be nil.
func NewWSHandler(registry *core.Registry, obs core.Observer, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{registry: registry, obs: obs, cfg: cfg, log: logger}
}

// ServeHTTP serves GET /ws/diagram/{room}/.
func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	roomName, ok := roomFromPath(r.URL.Path)
	if !ok {
		writeError(w, stdhttp.StatusBadRequest, "invalid room name")
		return
	}
	h.serve(w, r, roomName)
}

func (h *WSHandler) serve(w stdhttp.ResponseWriter, r *stdhttp.Request, roomName string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.cfg.AllowedOrigins,
		InsecureSkipVerify: len(h.cfg.AllowedOrigins) == 0,
	})
	if err != nil {
		h.log.Error().Err(err).Str("room", roomName).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(utils.NewID(), h.cfg.SendQueueSize)
	if subject := SubjectFromContext(r.Context()); subject != "" {
		h.log.Debug().Str("room", roomName).Str("participant", client.ID()).Str("subject", subject).Msg("authenticated participant")
	}
	session := core.NewSession(h.registry, roomName, client, h.obs, h.log)
	if err := session.Open(); err != nil {
		if errors.Is(err, core.ErrTooManyRooms) {
			h.log.Warn().Err(err).Str("room", roomName).Msg("room limit reached")
			conn.Close(websocket.StatusTryAgainLater, "too many rooms")
			return
		}
		h.log.Error().Err(err).Str("room", roomName).Msg("open session")
		conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 3)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.pingLoop(ctx, conn)
	}()

	err = <-errCh
	// Leave before waiting on the other goroutines so locks are released
	// even while a write is stuck on a peer that stopped reading.
	session.Close()
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if errors.Is(err, core.ErrSlowConsumer) {
		h.log.Warn().Str("room", roomName).Str("participant", client.ID()).Msg("closing slow consumer")
		conn.Close(websocket.StatusPolicyViolation, "slow consumer")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("room", roomName).Str("participant", client.ID()).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	limiter := newRateLimiter(h.cfg.MaxMessagesPerMinute)
	limiter.startReset(ctx.Done())

	participant := session.Client().ID()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		if !limiter.allow() {
			h.log.Debug().Str("participant", participant).Msg("inbound rate limit exceeded, dropping message")
			continue
		}

		cmd, err := decodeInbound(data)
		if err != nil {
			h.log.Debug().Err(err).Str("participant", participant).Msg("dropping malformed inbound")
			continue
		}
		session.Handle(cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events():
			msg := outboundFromEvent(event)
			if msg == nil {
				continue
			}
			if err := h.write(ctx, conn, msg); err != nil {
				h.log.Error().Err(err).Str("participant", client.ID()).Msg("write ws event")
				return err
			}
		case <-client.Done():
			return client.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, msg any) error {
	if h.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.WriteTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, conn, msg)
}

func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	if h.cfg.PingInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.pingTimeout())
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) pingTimeout() time.Duration {
	if h.cfg.WriteTimeout > 0 {
		return h.cfg.WriteTimeout
	}
	return h.cfg.PingInterval
}
