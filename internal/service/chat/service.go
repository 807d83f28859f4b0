package chat

import (
	"net/http"
	"strconv"

	"github.com/udinder/udinder/internal/app"
	"github.com/udinder/udinder/internal/db"
	svcErr "github.com/udinder/udinder/internal/errors"
	"github.com/udinder/udinder/internal/repository"
	"github.com/udinder/udinder/internal/server"
)

// pageSize is the fixed page length for conversation listings.
const pageSize = 50

// Service implements the Chat HTTP API: direct messages between users.
type Service struct {
	appCtx      *app.AppContext
	messageRepo *repository.MessageRepository
}

// NewChatService creates a new Chat service with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		messageRepo: repository.NewMessageRepository(appCtx.DB),
	}
}

type sendMessageRequest struct {
	SenderID   uint64 `json:"sender_id"`
	ReceiverID uint64 `json:"receiver_id"`
	Message    string `json:"message"`
}

type messageEntry struct {
	ID         uint64 `json:"id"`
	SenderID   uint64 `json:"sender_id"`
	ReceiverID uint64 `json:"receiver_id"`
	Message    string `json:"message"`
}

type conversationResponse struct {
	Messages            []messageEntry `json:"messages"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}

// handleSendMessage stores a direct message. Foreign keys reject
// messages referencing unknown users.
func (s *Service) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid JSON body"))
		return
	}

	s.appCtx.Logger.Debug("SendMessage called", "sender", req.SenderID, "receiver", req.ReceiverID)

	if req.SenderID == 0 || req.ReceiverID == 0 {
		server.WriteError(w, svcErr.InvalidArgument("sender_id and receiver_id are required"))
		return
	}
	if req.SenderID == req.ReceiverID {
		server.WriteError(w, svcErr.InvalidArgument("cannot message yourself"))
		return
	}
	if req.Message == "" {
		server.WriteError(w, svcErr.InvalidArgument("message must not be empty"))
		return
	}

	msg := db.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Message:    req.Message,
	}

	if err := s.messageRepo.CreateMessage(r.Context(), &msg); err != nil {
		s.appCtx.Logger.Error("CreateMessage failed", "err", err)
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusCreated, messageEntry{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Message:    msg.Message,
	})
}

// handleListConversation returns the messages between user_id and
// peer_id in both directions, newest first, with cursor pagination.
// Order rides on the message id; the table has no timestamp column.
func (s *Service) handleListConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "user_id")
	if err != nil {
		server.WriteError(w, err)
		return
	}
	peerID, err := queryID(r, "peer_id")
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}

	messages, nextToken, err := s.messageRepo.ListConversation(r.Context(), userID, peerID, token, pageSize)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	resp := conversationResponse{Messages: []messageEntry{}}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, messageEntry{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Message:    m.Message,
		})
	}
	resp.NextPaginationToken = nextToken

	server.WriteJSON(w, http.StatusOK, resp)
}

// queryID reads a required uint64 query param.
func queryID(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a valid uint64")
	}
	return id, nil
}
