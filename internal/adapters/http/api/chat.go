package api

import (
	"context"
	"net/http"

	"github.com/okian/mentorlink/internal/domain/model"
)

// ChatDependencies defines the chat operations.
type ChatDependencies interface {
	SendChat(ctx context.Context, senderID, receiverID, text string) (model.ChatMessage, error)
	ChatStudents(ctx context.Context, userID string) ([]*model.Profile, error)
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	deps ChatDependencies
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(deps ChatDependencies) *ChatHandler {
	return &ChatHandler{deps: deps}
}

type chatRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Text       string `json:"text" validate:"required,max=4000"`
}

// HandleSend handles POST /chat/messages. Delivery happens over the
// realtime channel; the response echoes the message.
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	const op = "api.send_chat"
	userID, _ := userFrom(r)

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	msg, err := h.deps.SendChat(r.Context(), userID, req.ReceiverID, req.Text)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// HandleStudents handles GET /chat/students.
func (h *ChatHandler) HandleStudents(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_students"
	userID, _ := userFrom(r)
	people, err := h.deps.ChatStudents(r.Context(), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if people == nil {
		people = []*model.Profile{}
	}
	writeJSON(w, http.StatusOK, people)
}
