// Package chat implements the realtime chat room: presence, typing
// indicators and the message lifecycle, fanned out to every connected
// client over websockets.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gitlab.com/kyawswar/ledger-chat/internal/logger"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

type inboundEvent struct {
	client *Client
	env    Envelope
}

// Hub owns the chat room state. The presence and typing sets and the
// client registry are touched only by the run loop; connections talk to
// the hub exclusively through its channels. Because every signal is
// processed on one goroutine, broadcasts go out in the order the
// originating operations completed.
type Hub struct {
	store    MessageStore
	identity IdentityResolver
	reporter ErrorReporter
	baseCtx  context.Context

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	stop       chan struct{}
	done       chan struct{}

	// Run-loop state. Never accessed from outside the loop.
	clients  map[*Client]struct{}
	presence map[string]struct{}
	typing   map[string]struct{}
}

// NewHub creates a Hub. A nil identity defaults to ClaimedIdentity and a
// nil reporter to LogReporter.
func NewHub(baseCtx context.Context, store MessageStore, identity IdentityResolver, reporter ErrorReporter) *Hub {
	if identity == nil {
		identity = ClaimedIdentity{}
	}
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Hub{
		store:      store,
		identity:   identity,
		reporter:   reporter,
		baseCtx:    baseCtx,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		presence:   make(map[string]struct{}),
		typing:     make(map[string]struct{}),
	}
}

// Run processes hub events until Stop is called. Call it on its own
// goroutine.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.sendHistory(c)
		case c := <-h.unregister:
			h.remove(c)
		case ev := <-h.inbound:
			h.handle(ev.client, ev.env)
		case <-h.stop:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and waits for the run loop to exit.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// sendHistory delivers the one-time message snapshot to a newly
// registered client. Later messages arrive only via broadcasts.
func (h *Hub) sendHistory(c *Client) {
	history, err := h.store.History(h.baseCtx)
	if err != nil {
		h.reporter.Report(EventLoadMessages, err)
		return
	}
	if history == nil {
		history = []models.Message{}
	}
	h.sendTo(c, EventLoadMessages, history)
}

func (h *Hub) handle(c *Client, env Envelope) {
	switch env.Event {
	case EventJoinChat:
		h.handleJoin(c, env.Data)
	case EventChatMessage:
		h.handleChatMessage(c, env.Data)
	case EventEditMessage:
		h.handleEditMessage(c, env.Data)
	case EventDeleteMessage:
		h.handleDeleteMessage(env.Data)
	case EventDeleteAllMessages:
		h.handleDeleteAll()
	case EventAddReaction:
		h.handleReaction(c, env.Data, true)
	case EventRemoveReaction:
		h.handleReaction(c, env.Data, false)
	case EventTypingStart:
		h.handleTyping(env.Data, true)
	case EventTypingStop:
		h.handleTyping(env.Data, false)
	default:
		h.reporter.Report(env.Event, fmt.Errorf("unknown event %q", env.Event))
	}
}

// handleJoin binds a username to the connection and announces the new
// presence set. Joining twice with the same name is absorbed by the set,
// but each join re-broadcasts. Rejoining under a different name rebinds
// the connection without removing the old name from the set; that entry
// lingers until restart, since disconnect only clears the current
// binding.
func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		h.reporter.Report(EventJoinChat, err)
		return
	}
	c.username = username
	if username != "" {
		c.joined = true
		h.presence[username] = struct{}{}
	}
	h.broadcast(EventUpdateUsers, sortedSet(h.presence))
}

func (h *Hub) handleChatMessage(c *Client, data json.RawMessage) {
	var p chatMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.reporter.Report(EventChatMessage, err)
		return
	}
	msg := &models.Message{
		Username: h.identity.Resolve(p.Username, c.username),
		Text:     p.Text,
	}
	// The reply is a snapshot of whatever the client saw, not a live
	// reference. Editing or deleting the parent leaves it stale.
	if p.ReplyTo != nil && p.ReplyTo.ID != 0 {
		reply := *p.ReplyTo
		msg.Reply = &reply
	}
	if err := h.store.Create(h.baseCtx, msg); err != nil {
		h.reporter.Report(EventChatMessage, err)
		return
	}
	msg.Reactions = []models.Reaction{}
	h.broadcast(EventNewMessage, msg)
}

func (h *Hub) handleEditMessage(c *Client, data json.RawMessage) {
	var p editMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.reporter.Report(EventEditMessage, err)
		return
	}
	msg, err := h.store.GetByID(h.baseCtx, p.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.reporter.Report(EventEditMessage, err)
		}
		return
	}
	requester := h.identity.Resolve(p.Username, c.username)
	if msg.Username != requester {
		logger.Log.Warn().
			Str("requester", requester).
			Str("author", msg.Username).
			Int64("message_id", p.ID).
			Msg("edit denied: not the author")
		return
	}
	if err := h.store.UpdateText(h.baseCtx, p.ID, p.NewText); err != nil {
		h.reporter.Report(EventEditMessage, err)
		return
	}
	msg.Text = p.NewText
	msg.Edited = true
	h.broadcast(EventMessageEdited, msg)
}

func (h *Hub) handleDeleteMessage(data json.RawMessage) {
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		h.reporter.Report(EventDeleteMessage, err)
		return
	}
	if err := h.store.Delete(h.baseCtx, id); err != nil {
		h.reporter.Report(EventDeleteMessage, err)
		return
	}
	h.broadcast(EventMessageDeleted, id)
}

func (h *Hub) handleDeleteAll() {
	if err := h.store.DeleteAll(h.baseCtx); err != nil {
		h.reporter.Report(EventDeleteAllMessages, err)
		return
	}
	h.broadcast(EventAllMessagesDeleted, nil)
}

// handleReaction broadcasts the full reaction list after every
// successful add or remove, even when the list is unchanged (duplicate
// add, absent remove). A missing message broadcasts nothing: both store
// paths report ErrNotFound for it.
func (h *Hub) handleReaction(c *Client, data json.RawMessage, add bool) {
	event := EventRemoveReaction
	if add {
		event = EventAddReaction
	}
	var p reactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.reporter.Report(event, err)
		return
	}
	username := h.identity.Resolve(p.Username, c.username)

	var reactions []models.Reaction
	var err error
	if add {
		reactions, err = h.store.AddReaction(h.baseCtx, p.MessageID, p.Emoji, username)
	} else {
		reactions, err = h.store.RemoveReaction(h.baseCtx, p.MessageID, p.Emoji, username)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.reporter.Report(event, err)
		}
		return
	}
	h.broadcast(EventUpdateReactions, reactionsUpdate{MessageID: p.MessageID, Reactions: reactions})
}

func (h *Hub) handleTyping(data json.RawMessage, start bool) {
	event := EventTypingStop
	if start {
		event = EventTypingStart
	}
	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		h.reporter.Report(event, err)
		return
	}
	if username == "" {
		return
	}
	if start {
		h.typing[username] = struct{}{}
		h.broadcast(EventUserTyping, sortedSet(h.typing))
		return
	}
	if _, ok := h.typing[username]; ok {
		delete(h.typing, username)
		h.broadcast(EventUserTyping, sortedSet(h.typing))
	}
}

// remove unregisters a client and cleans up its presence and typing
// entries, broadcasting each set that changed. A connection that never
// joined leaves no trace. Safe to call more than once.
func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if !c.joined {
		return
	}
	if _, ok := h.typing[c.username]; ok {
		delete(h.typing, c.username)
		h.broadcast(EventUserTyping, sortedSet(h.typing))
	}
	if _, ok := h.presence[c.username]; ok {
		delete(h.presence, c.username)
		h.broadcast(EventUpdateUsers, sortedSet(h.presence))
	}
}

func (h *Hub) broadcast(event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		h.reporter.Report(event, err)
		return
	}
	var dropped []*Client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: disconnect rather than block the room.
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		h.remove(c)
	}
}

func (h *Hub) sendTo(c *Client, event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		h.reporter.Report(event, err)
		return
	}
	select {
	case c.send <- payload:
	default:
		h.remove(c)
	}
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s data: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

func sortedSet(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
