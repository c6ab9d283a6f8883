package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/chat"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type ChatHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Send(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type chatHandlerImpl struct {
	chatService chat.ChatService
	jwtService  jwt.Service
}

func NewChatHandler(chatService chat.ChatService, jwtService jwt.Service) ChatHandler {
	return &chatHandlerImpl{chatService: chatService, jwtService: jwtService}
}

// List handles GET /projects/{projectID}/chat?limit=
func (h *chatHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	messages, err := h.chatService.List(r.Context(), identity, chi.URLParam(r, "projectID"), queryInt(r, "limit", chat.DefaultListLimit))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, messages)
}

// Send handles POST /projects/{projectID}/chat
func (h *chatHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req chat.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	msg, err := h.chatService.Send(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Message sent", msg)
}

// Stream handles GET /stream/projects/{projectID}/chat?token=
// Stream tokens carry only the user id, so access is by project assignment.
func (h *chatHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := streamUser(w, r, h.jwtService)
	if !ok {
		return
	}

	sub, err := h.chatService.Subscribe(r.Context(), auth.Identity{UserID: userID}, chi.URLParam(r, "projectID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer sub.Cancel()

	streamEvents(w, r, userID, sub.Start())
}
