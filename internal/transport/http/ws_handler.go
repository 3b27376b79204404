package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/proto"
)

// Authenticator resolves a bearer token into a caller identity.
type Authenticator interface {
	Authenticate(token string) (core.Identity, error)
}

// InvocationRecorder receives per-command timings. It may be nil.
type InvocationRecorder interface {
	RecordInvocation(channel, method, result string, d time.Duration)
}

// WSOptions tunes a realtime endpoint.
type WSOptions struct {
	MaxMessageBytes int64
	SendBuffer      int
	InvocationRate  float64
	InvocationBurst int
	AllowedOrigins  []string
}

// WSHandler authenticates an upgrade request and bridges the socket to a
// core.Channel.
type WSHandler struct {
	channel core.Channel
	auth    Authenticator
	opts    WSOptions
	metrics InvocationRecorder
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler for one channel.
func NewWSHandler(channel core.Channel, authn Authenticator, opts WSOptions, metrics InvocationRecorder, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		channel: channel,
		auth:    authn,
		opts:    opts,
		metrics: metrics,
		log:     logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	identity, err := h.auth.Authenticate(bearerToken(r))
	if err != nil {
		ce := classifyError(err)
		h.log.Debug().Err(err).Str("channel", h.channel.Name()).Msg("reject unauthenticated upgrade")
		writeJSONError(w, stdhttp.StatusUnauthorized, ce.Code)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.opts.AllowedOrigins,
		InsecureSkipVerify: len(h.opts.AllowedOrigins) == 0,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := core.NewClient(uuid.NewString(), identity, h.opts.SendBuffer)
	if err := h.channel.Connect(ctx, client); err != nil {
		ce := classifyError(err)
		_ = wsjson.Write(ctx, conn, outboundFromEvent(errorEvent(ce)))
		conn.Close(websocket.StatusPolicyViolation, ce.Code)
		return
	}

	// Membership is released before the close handshake, which may wait on
	// an unresponsive peer.
	disconnected := false
	disconnect := func(cause error) {
		if disconnected {
			return
		}
		disconnected = true
		h.channel.Disconnect(context.WithoutCancel(ctx), client, cause)
	}
	defer func() {
		if p := recover(); p != nil {
			cause := fmt.Errorf("panic: %v", p)
			h.log.Error().Err(cause).Str("client_id", client.ID).Msg("ws handler panic")
			disconnect(cause)
			return
		}
		disconnect(nil)
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- guard(func() error { return h.readLoop(ctx, conn, client) })
	}()
	go func() {
		errCh <- guard(func() error { return h.writeLoop(ctx, conn, client) })
	}()

	err = <-errCh
	cancel()
	<-errCh

	var cause error
	status := websocket.StatusNormalClosure
	reason := "closing"
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
			reason = "connection error"
			cause = err
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	disconnect(cause)
	conn.Close(status, reason)
}

// guard turns a panic in a connection goroutine into an error so the
// connection is torn down and its membership released.
func guard(loop func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return loop()
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newInvocationLimiter(h.opts.InvocationRate, h.opts.InvocationBurst)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			client.Send(errorEvent(&core.CoreError{Code: core.ErrCodeRateLimited, Message: "too many requests"}))
			continue
		}

		cmd, ce := inboundToCommand(inbound)
		if ce != nil {
			client.Send(errorEvent(ce))
			continue
		}

		h.invoke(ctx, client, cmd)
	}
}

// invoke runs one command to completion before the next frame is read, so
// commands of a connection are handled in arrival order.
func (h *WSHandler) invoke(ctx context.Context, client *core.Client, cmd *core.Command) {
	start := time.Now()
	result := "ok"

	if err := h.channel.Handle(ctx, client, cmd); err != nil {
		ce := classifyError(err)
		result = ce.Code
		if ce.Code == core.ErrCodeInternal {
			h.log.Error().Err(err).
				Str("channel", h.channel.Name()).
				Str("client_id", client.ID).
				Str("method", cmd.Kind.String()).
				Msg("invocation failed")
		}
		client.Send(errorEvent(ce))
	}

	if h.metrics != nil {
		h.metrics.RecordInvocation(h.channel.Name(), cmd.Kind.String(), result, time.Since(start))
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
