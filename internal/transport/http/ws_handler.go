package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vocab-test-service/internal/app"
	"vocab-test-service/internal/domain"
)

// WSHandler drives the attempt lifecycle over a websocket: the client sends
// start/answer/complete/clear messages and receives started/answerResult/
// completed events.
type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.AttemptService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	TestID string `json:"testId"`
}

type answerPayload struct {
	QuestionID string             `json:"questionId"`
	Answer     domain.AnswerValue `json:"answer"`
	TimeSpent  int                `json:"timeSpent"`
}

type answerResult struct {
	QuestionID string             `json:"questionId"`
	UserAnswer domain.AnswerValue `json:"userAnswer"`
	IsCorrect  bool               `json:"isCorrect"`
	TimeSpent  int                `json:"timeSpent"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type ackPayload struct {
	Recorded bool `json:"recorded"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// attempt use cases. All writes happen from this read loop, so no separate
// writer goroutine is needed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid start payload")
				continue
			}
			active, attempt, err := h.service.Start(r.Context(), userID, payload.TestID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, outboundMessage[startedPayload]{Type: "started", Payload: startedPayload{
				AttemptID: attempt.ID,
				StartedAt: attempt.StartedAt,
				Test:      newActiveTestView(active),
			}})

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid answer payload")
				continue
			}
			recorded, feedback, err := h.service.SubmitAnswer(r.Context(), userID, payload.QuestionID, payload.Answer, payload.TimeSpent)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			if feedback {
				h.write(conn, outboundMessage[answerResult]{Type: "answerResult", Payload: answerResult{
					QuestionID: recorded.QuestionID,
					UserAnswer: recorded.UserAnswer,
					IsCorrect:  recorded.IsCorrect,
					TimeSpent:  recorded.TimeSpent,
				}})
			} else {
				h.write(conn, outboundMessage[ackPayload]{Type: "answerAck", Payload: ackPayload{Recorded: true}})
			}

		case "complete":
			attempt, err := h.service.Complete(r.Context(), userID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, outboundMessage[domain.TestAttempt]{Type: "completed", Payload: attempt})

		case "clear":
			h.service.Clear(userID)
			h.write(conn, outboundMessage[ackPayload]{Type: "cleared", Payload: ackPayload{Recorded: true}})

		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, msg any) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn("ws write error", zap.Error(err))
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	h.write(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
