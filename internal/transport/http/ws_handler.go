package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// Client -> server command types. Each command carries the session PIN as
// its routing key.
const (
	cmdJoinGame     = "joinGame"
	cmdStartGame    = "startGame"
	cmdSubmitAnswer = "submitAnswer"
	cmdNextQuestion = "nextQuestion"
	cmdEndGame      = "endGame"
)

// Server -> client messages outside the broadcast event set.
const (
	msgConnected  = "connected"
	msgJoinResult = "joinResult"
)

// Join failure reasons surfaced through the joinGame acknowledgement. The
// wording is part of the client contract.
const (
	reasonGameNotFound = "Game not found"
	reasonGameStarted  = "Game already started"
)

type commandMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type connectedPayload struct {
	PlayerID string `json:"playerId"`
}

type joinGamePayload struct {
	Pin  string `json:"pin"`
	Name string `json:"name"`
}

type joinResultPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type pinPayload struct {
	Pin string `json:"pin"`
}

type submitAnswerPayload struct {
	Pin      string `json:"pin"`
	PlayerID string `json:"playerId"`
	AnswerID string `json:"answerId"`
}

// WSHandler is the realtime gateway: it upgrades client connections,
// dispatches inbound commands to the game service and lets sessions push
// events back through the connection's app.ClientConn.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS upgrades the request and runs the connection until the transport
// drops, at which point the identity is disconnected from every session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(conn, uuid.NewString(), h.logger)
	go client.writePump()

	// Tell the client its connection identity; submitAnswer echoes it back.
	client.sendMessage(msgConnected, connectedPayload{PlayerID: client.id})

	h.logger.Info("client connected", zap.String("playerId", client.id))
	h.readLoop(client)

	h.service.Disconnect(client.id)
	client.Close()
	h.logger.Info("client disconnected", zap.String("playerId", client.id))
}

func (h *WSHandler) readLoop(client *wsClient) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("ws read error", zap.String("playerId", client.id), zap.Error(err))
			}
			return
		}
		h.handleCommand(client, data)
	}
}

func (h *WSHandler) handleCommand(client *wsClient, data []byte) {
	var msg commandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug("invalid command frame", zap.String("playerId", client.id), zap.Error(err))
		return
	}

	switch msg.Type {
	case cmdJoinGame:
		var payload joinGamePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			client.sendMessage(msgJoinResult, joinResultPayload{Success: false, Error: reasonGameNotFound})
			return
		}
		h.handleJoin(client, payload)

	case cmdStartGame:
		var payload pinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		h.service.StartGame(payload.Pin)

	case cmdSubmitAnswer:
		var payload submitAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		h.service.SubmitAnswer(payload.Pin, payload.PlayerID, payload.AnswerID)

	case cmdNextQuestion:
		var payload pinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		h.service.NextQuestion(payload.Pin)

	case cmdEndGame:
		var payload pinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		h.service.EndGame(payload.Pin)

	default:
		// Unknown commands degrade to a no-op, matching the silent policy.
		h.logger.Debug("unknown command", zap.String("type", msg.Type), zap.String("playerId", client.id))
	}
}

func (h *WSHandler) handleJoin(client *wsClient, payload joinGamePayload) {
	_, err := h.service.Join(payload.Pin, client.id, payload.Name, client)
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		client.sendMessage(msgJoinResult, joinResultPayload{Success: false, Error: reasonGameNotFound})
	case errors.Is(err, domain.ErrGameStarted):
		client.sendMessage(msgJoinResult, joinResultPayload{Success: false, Error: reasonGameStarted})
	case err != nil:
		client.sendMessage(msgJoinResult, joinResultPayload{Success: false, Error: err.Error()})
	default:
		client.sendMessage(msgJoinResult, joinResultPayload{Success: true})
	}
}
