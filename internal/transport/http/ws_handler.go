package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

type WSHandler struct {
	service  *app.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type lifelinePayload struct {
	Kind string `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz
// session per connection. The client identifies the purchase via query
// params; the session starts on connect and is torn down on disconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	purchaseRef := r.URL.Query().Get("purchaseRef")
	if purchaseRef == "" {
		http.Error(w, "missing purchaseRef", http.StatusBadRequest)
		return
	}
	desc := domain.SessionDescriptor{
		SessionID:   r.URL.Query().Get("sessionId"),
		PurchaseRef: purchaseRef,
		TeamMode:    r.URL.Query().Get("team") == "true" || r.URL.Query().Get("team") == "1",
	}
	lang := domain.LangEnglish
	if r.URL.Query().Get("lang") == string(domain.LangArabic) {
		lang = domain.LangArabic
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), desc)
	if err != nil {
		if errors.Is(err, domain.ErrPoolEmpty) {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "noQuestions", Payload: errorPayload{Message: noQuestionsText.In(lang)}})
			return
		}
		h.log.Warn().Err(err).Str("purchase", purchaseRef).Msg("failed to start session")
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "failed to load questions"}})
		return
	}
	sessionID := session.ID()

	updates, cancel, err := h.service.Subscribe(sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "state", Payload: renderState(snap, lang)}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
				if snap.Result != nil {
					finished := outboundMessage[any]{Type: "finished", Payload: renderResult(*snap.Result, lang)}
					select {
					case send <- finished:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := h.service.Answer(sessionID, domain.OptionLabel(payload.Option)); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "lifeline":
			var payload lifelinePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid lifeline payload"}}
				continue
			}
			if err := h.service.UseLifeline(sessionID, app.LifelineKind(payload.Kind)); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
