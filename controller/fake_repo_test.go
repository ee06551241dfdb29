package controller

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"orion-chatbot/store"
)

// fakeRepo is an in-memory Repository. Methods a test does not exercise
// fall through to the nil embedded interface and panic.
type fakeRepo struct {
	Repository

	mu            sync.Mutex
	pingErr       error
	sessionErr    error
	bots          map[string]store.Chatbot
	products      []store.Product
	conversations map[string]store.Conversation
	messages      map[string][]store.Message
	tickets       map[string]store.Ticket
	replies       map[string][]store.TicketReply
	events        []store.Event
	sessions      map[string]bool
	analyticsArgs []any
	pruned        time.Duration
	revoked       int
	nextID        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bots:          map[string]store.Chatbot{},
		conversations: map[string]store.Conversation{},
		messages:      map[string][]store.Message{},
		tickets:       map[string]store.Ticket{},
		replies:       map[string][]store.TicketReply{},
		sessions:      map[string]bool{},
	}
}

func (f *fakeRepo) id(prefix string) string {
	f.nextID++
	return prefix + "-" + strconv.Itoa(f.nextID)
}

func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }

func (f *fakeRepo) ListChatbots(context.Context) ([]store.Chatbot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Chatbot, 0, len(f.bots))
	for _, b := range f.bots {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) GetChatbot(_ context.Context, id string) (store.Chatbot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bots[id]
	if !ok {
		return store.Chatbot{}, store.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) ActiveChatbot(ctx context.Context, id string) (store.Chatbot, error) {
	b, err := f.GetChatbot(ctx, id)
	if err == nil && !b.IsActive {
		return store.Chatbot{}, store.ErrNotFound
	}
	return b, err
}

func (f *fakeRepo) CreateChatbot(_ context.Context, b store.Chatbot) (store.Chatbot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		b.ID = f.id("bot")
	}
	b.CreatedAt = time.Now()
	f.bots[b.ID] = b
	return b, nil
}

func (f *fakeRepo) UpdateChatbot(_ context.Context, id, name string, isActive bool, systemPrompt string) (store.Chatbot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bots[id]
	if !ok {
		return store.Chatbot{}, store.ErrNotFound
	}
	b.Name, b.IsActive, b.SystemPrompt = name, isActive, systemPrompt
	f.bots[id] = b
	return b, nil
}

func (f *fakeRepo) UpdateSettings(_ context.Context, id string, st store.Settings) (store.Chatbot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bots[id]
	if !ok {
		return store.Chatbot{}, store.ErrNotFound
	}
	b.Settings = st
	f.bots[id] = b
	return b, nil
}

func (f *fakeRepo) DeleteChatbot(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bots[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.bots, id)
	return nil
}

func (f *fakeRepo) ListProducts(_ context.Context, chatbotID string, activeOnly bool) ([]store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Product, 0)
	for _, p := range f.products {
		if p.ChatbotID == chatbotID && (!activeOnly || p.IsActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetProduct(_ context.Context, id string) (store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return store.Product{}, store.ErrNotFound
}

func (f *fakeRepo) CreateProduct(_ context.Context, p store.Product) (store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = f.id("prod")
	}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, p store.Product) (store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
			return p, nil
		}
	}
	return store.Product{}, store.ErrNotFound
}

func (f *fakeRepo) EnsureConversation(_ context.Context, chatbotID, conversationID, visitorID string) (store.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conversations[conversationID]; ok && c.ChatbotID == chatbotID {
		return c, nil
	}
	if visitorID == "" {
		visitorID = f.id("v")
	}
	c := store.Conversation{ID: f.id("conv"), ChatbotID: chatbotID, VisitorID: visitorID, CreatedAt: time.Now()}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeRepo) AppendMessages(_ context.Context, conversationID string, msgs ...store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		m.ConversationID = conversationID
		m.CreatedAt = time.Now()
		f.messages[conversationID] = append(f.messages[conversationID], m)
	}
	return nil
}

func (f *fakeRepo) RecentMessages(_ context.Context, conversationID string, limit int) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]store.Message(nil), msgs...), nil
}

func (f *fakeRepo) GetConversation(_ context.Context, id string) (store.Conversation, []store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return store.Conversation{}, nil, store.ErrNotFound
	}
	return c, f.messages[id], nil
}

func (f *fakeRepo) CreateTicket(_ context.Context, t store.Ticket) (store.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.id("ticket")
	t.Status = store.TicketOpen
	t.CreatedAt = time.Now()
	f.tickets[t.ID] = t
	return t, nil
}

func (f *fakeRepo) ListTickets(_ context.Context, flt store.TicketFilter) ([]store.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Ticket, 0)
	for _, t := range f.tickets {
		if (flt.Status == "" || t.Status == flt.Status) && (flt.ChatbotID == "" || t.ChatbotID == flt.ChatbotID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTicket(_ context.Context, id string) (store.Ticket, []store.TicketReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return store.Ticket{}, nil, store.ErrNotFound
	}
	return t, f.replies[id], nil
}

func (f *fakeRepo) UpdateTicketStatus(_ context.Context, id string, status store.TicketStatus) (store.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return store.Ticket{}, store.ErrNotFound
	}
	t.Status = status
	f.tickets[id] = t
	return t, nil
}

func (f *fakeRepo) AddTicketReply(_ context.Context, r store.TicketReply) (store.TicketReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[r.TicketID]
	if !ok {
		return store.TicketReply{}, store.ErrNotFound
	}
	if t.Status == store.TicketOpen {
		t.Status = store.TicketInProgress
		f.tickets[t.ID] = t
	}
	r.ID = f.id("reply")
	r.CreatedAt = time.Now()
	f.replies[r.TicketID] = append(f.replies[r.TicketID], r)
	return r, nil
}

func (f *fakeRepo) InsertEvent(_ context.Context, e store.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func (f *fakeRepo) PruneEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	f.pruned = olderThan
	return 0, nil
}

func (f *fakeRepo) Analytics(_ context.Context, chatbotID string, days int) (store.Analytics, error) {
	f.analyticsArgs = []any{chatbotID, days}
	return store.Analytics{ChatbotID: chatbotID, Days: days, TicketsByStatus: map[string]int64{"open": 2}, EventsByType: map[string]int64{}}, nil
}

func (f *fakeRepo) Totals(context.Context) (store.Totals, error) {
	return store.Totals{Chatbots: int64(len(f.bots)), OpenTickets: 1}, nil
}

func (f *fakeRepo) AdminSessionActive(_ context.Context, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return false, f.sessionErr
	}
	return f.sessions[tokenHash], nil
}

func (f *fakeRepo) RevokeAdminSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeRepo) RevokeExpiredAdminSessions(context.Context) (int64, error) {
	f.revoked++
	return 0, nil
}

func decode(b []byte) map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return out
}
