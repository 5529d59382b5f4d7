package chat

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// runConn drives one socket: wrap it, keep the read deadline fresh through
// pongs, decode envelopes and hand them to the coordinator. Malformed
// frames are dropped without closing the socket; transport errors end the
// loop and trigger cleanup.
func runConn(ws *websocket.Conn, maxMessageSize int64, handle func(*Conn, Envelope), leave func(*Conn)) {
	conn := NewConn(ws)
	defer func() {
		leave(conn)
		conn.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("Socket closed unexpectedly")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			log.Warn().Str("conn_id", conn.ID()).Msg("Dropping malformed event envelope")
			continue
		}

		handle(conn, env)
	}
}

// decodePayload unmarshals and validates an event payload in one step
func decodePayload(v *validator.Validate, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}
