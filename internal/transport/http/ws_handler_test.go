package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.GameService) {
	t.Helper()
	registry := app.NewRegistry(zap.NewNop())
	t.Cleanup(registry.Close)
	store := memory.NewQuizStoreWithSeed([]domain.Quiz{sampleQuiz()})
	service := app.NewGameServiceWithDelay(registry, store, zap.NewNop(), 5*time.Millisecond)
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

// readUntil drains messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, payload := readNext(t, conn)
		if typ == want {
			return payload
		}
	}
	t.Fatalf("never received %q", want)
	return nil
}

func TestConnectAssignsIdentity(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialWS(t, server)

	typ, payload := readNext(t, conn)
	if typ != "connected" {
		t.Fatalf("expected connected first, got %s", typ)
	}
	if id, _ := payload["playerId"].(string); id == "" {
		t.Fatalf("expected a playerId, got %v", payload)
	}
}

func TestJoinGameFlow(t *testing.T) {
	server, service := newTestServer(t)
	pin, err := service.CreateSession(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := dialWS(t, server)
	readUntil(t, conn, "connected")

	join := map[string]any{
		"type":    "joinGame",
		"payload": map[string]any{"pin": pin, "name": "Alice"},
	}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join: %v", err)
	}

	joinedSeen, resultSeen := false, false
	for i := 0; i < 4 && !(joinedSeen && resultSeen); i++ {
		typ, payload := readNext(t, conn)
		switch typ {
		case "playerJoined":
			joinedSeen = true
		case "joinResult":
			resultSeen = true
			if ok, _ := payload["success"].(bool); !ok {
				t.Fatalf("expected successful join, got %v", payload)
			}
		}
	}
	if !joinedSeen || !resultSeen {
		t.Fatalf("expected playerJoined and joinResult, got playerJoined=%v joinResult=%v", joinedSeen, resultSeen)
	}
}

func TestJoinUnknownPinRejected(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialWS(t, server)
	readUntil(t, conn, "connected")

	join := map[string]any{
		"type":    "joinGame",
		"payload": map[string]any{"pin": "000000", "name": "Alice"},
	}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join: %v", err)
	}

	payload := readUntil(t, conn, "joinResult")
	if ok, _ := payload["success"].(bool); ok {
		t.Fatalf("expected rejection, got %v", payload)
	}
	if reason, _ := payload["error"].(string); reason != "Game not found" {
		t.Fatalf("expected %q, got %q", "Game not found", payload["error"])
	}
}

func TestStartAndAnswerFlow(t *testing.T) {
	server, service := newTestServer(t)
	pin, err := service.CreateSession(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := dialWS(t, server)
	_, connected := readNext(t, conn)
	playerID, _ := connected["playerId"].(string)

	if err := conn.WriteJSON(map[string]any{
		"type":    "joinGame",
		"payload": map[string]any{"pin": pin, "name": "Alice"},
	}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(t, conn, "joinResult")

	if err := conn.WriteJSON(map[string]any{
		"type":    "startGame",
		"payload": map[string]any{"pin": pin},
	}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	readUntil(t, conn, "gameStarted")
	started := readUntil(t, conn, "questionStarted")
	if idx, _ := started["questionIndex"].(float64); idx != 0 {
		t.Fatalf("expected question index 0, got %v", started["questionIndex"])
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "submitAnswer",
		"payload": map[string]any{"pin": pin, "playerId": playerID, "answerId": "a2"},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	answered := readUntil(t, conn, "playerAnswered")
	if got, _ := answered["answerId"].(string); got != "a2" {
		t.Fatalf("expected answerId a2, got %v", answered["answerId"])
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "endGame",
		"payload": map[string]any{"pin": pin},
	}); err != nil {
		t.Fatalf("write end: %v", err)
	}
	ended := readUntil(t, conn, "gameEnded")
	scores, ok := ended["finalScores"].([]any)
	if !ok || len(scores) != 1 {
		t.Fatalf("expected one final standing, got %v", ended["finalScores"])
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:       "q1",
				Question: "What is 2 + 2?",
				Answers: []domain.Answer{
					{ID: "a1", Text: "3", IsCorrect: false},
					{ID: "a2", Text: "4", IsCorrect: true},
					{ID: "a3", Text: "5", IsCorrect: false},
				},
				TimeLimit: 20,
			},
		},
	}
}
