package httpapi

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/game"
	"example.com/candle-predict/internal/sound"
)

// Server message types.
const (
	MsgSession = "session"
	MsgRound   = "round"
	MsgOutcome = "outcome"
	MsgSound   = "sound"
	MsgError   = "error"
)

// Client message types.
const (
	CmdPredict     = "predict"
	CmdNext        = "next"
	CmdToggleSound = "toggle_sound"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingEvery    = 20 * time.Second
	wsSendBuffer   = 16
	wsMaxMessage   = 4096 // client commands are small JSON objects
)

type wsMessage struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type clientMessage struct {
	Type      string `json:"type"`
	RoundID   string `json:"round_id,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// handlePlay runs one game session over a WebSocket. The session lives as long as the
// connection. Sound cues are pushed as "sound" messages.
// GET /api/play?player=alice
func (s *Server) handlePlay(c *gin.Context) {
	ctx := c.Request.Context()

	sess, err := s.Games.Create(ctx, c.Query("player"))
	if err != nil {
		s.fail(c, err)
		return
	}
	defer s.Games.Remove(sess.ID())

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := s.logger.With().Str("session", sess.ID()).Logger()
	logger.Info().Str("player", sess.Player()).Msg("play connected")

	cues := sound.NewChannelPlayer(wsSendBuffer)
	sess.Sound().SetPlayer(cues)
	defer sess.Sound().SetPlayer(nil)

	out := make(chan wsMessage, wsSendBuffer)
	readerDone := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		defer conn.Close()
		if err := writeLoop(conn, out, cues.C(), readerDone); err != nil {
			logger.Debug().Err(err).Msg("play write loop exit")
		}
	}()

	send := func(m wsMessage) {
		select {
		case out <- m:
		case <-writerDone:
		}
	}

	send(wsMessage{Type: MsgSession, Data: sess.Snapshot()})
	if round, err := sess.NextRound(ctx); err == nil {
		send(wsMessage{Type: MsgRound, Data: round})
	}

	err = s.readLoop(ctx, conn, sess, send)
	close(readerDone)
	<-writerDone

	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug().Err(err).Msg("play read loop exit")
	}
	logger.Info().Msg("play disconnected")
}

// writeLoop is the only writer of conn.
func writeLoop(conn *websocket.Conn, out <-chan wsMessage, cues <-chan sound.Cue, done <-chan struct{}) error {
	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()

	write := func(m wsMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(m)
	}

	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		case m := <-out:
			if err := write(m); err != nil {
				return err
			}
		case cue := <-cues:
			if err := write(wsMessage{Type: MsgSound, Data: cue}); err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
				return err
			}
		}
	}
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *game.Session, send func(wsMessage)) error {
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg clientMessage
		if err := json.Unmarshal(b, &msg); err != nil {
			send(wsMessage{Type: MsgError, Error: "invalid message"})
			continue
		}
		send(s.dispatch(ctx, sess, msg))
	}
}

// dispatch runs one client command and returns the reply.
func (s *Server) dispatch(ctx context.Context, sess *game.Session, msg clientMessage) wsMessage {
	switch msg.Type {
	case CmdPredict:
		out, err := sess.Predict(ctx, msg.RoundID, candle.Direction(strings.ToLower(msg.Direction)))
		if err != nil {
			return wsMessage{Type: MsgError, Error: err.Error()}
		}
		return wsMessage{Type: MsgOutcome, Data: out}
	case CmdNext:
		round, err := sess.NextRound(ctx)
		if err != nil {
			return wsMessage{Type: MsgError, Error: err.Error()}
		}
		return wsMessage{Type: MsgRound, Data: round}
	case CmdToggleSound:
		sess.ToggleSound(ctx)
		return wsMessage{Type: MsgSession, Data: sess.Snapshot()}
	default:
		return wsMessage{Type: MsgError, Error: "unknown message type: " + msg.Type}
	}
}
