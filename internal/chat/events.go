package chat

import (
	"encoding/json"

	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// Event names on the websocket surface. Inbound events are sent by
// clients, outbound events by the server.
const (
	// Inbound.
	EventJoinChat          = "joinChat"
	EventChatMessage       = "chatMessage"
	EventEditMessage       = "editMessage"
	EventDeleteMessage     = "deleteMessage"
	EventDeleteAllMessages = "deleteAllMessages"
	EventAddReaction       = "addReaction"
	EventRemoveReaction    = "removeReaction"
	EventTypingStart       = "typingStart"
	EventTypingStop        = "typingStop"

	// Outbound.
	EventLoadMessages       = "loadMessages"
	EventNewMessage         = "newMessage"
	EventMessageEdited      = "messageEdited"
	EventMessageDeleted     = "messageDeleted"
	EventAllMessagesDeleted = "allMessagesDeleted"
	EventUpdateReactions    = "updateReactions"
	EventUserTyping         = "userTyping"
	EventUpdateUsers        = "updateUsers"
)

// Envelope is the wire format for every chat event, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chatMessagePayload struct {
	Username string                `json:"username"`
	Text     string                `json:"text"`
	ReplyTo  *models.ReplySnapshot `json:"replyTo"`
}

type editMessagePayload struct {
	ID       int64  `json:"id"`
	NewText  string `json:"newText"`
	Username string `json:"username"`
}

type reactionPayload struct {
	MessageID int64  `json:"messageId"`
	Emoji     string `json:"emoji"`
	Username  string `json:"username"`
}

type reactionsUpdate struct {
	MessageID int64             `json:"messageId"`
	Reactions []models.Reaction `json:"reactions"`
}
