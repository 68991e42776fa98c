package realtime

import (
	"sync"

	"github.com/emirpasic/gods/v2/lists/doublylinkedlist"

	oaikit "github.com/blue-context/oaikit"
)

// Conversation mirrors the server-side conversation from the events the
// session receives: items are inserted after their previous_item_id,
// removed on delete and updated as output and transcripts complete.
//
// Thread Safety: Conversation is safe for concurrent use.
type Conversation struct {
	mu    sync.RWMutex
	id    string
	order *doublylinkedlist.List[string]
	items map[string]Item
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		order: doublylinkedlist.New[string](),
		items: make(map[string]Item),
	}
}

// ID returns the conversation id from conversation.created, if seen.
func (c *Conversation) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Len returns the number of items.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Size()
}

// Items returns the items in conversation order.
func (c *Conversation) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, 0, c.order.Size())
	it := c.order.Iterator()
	for it.Next() {
		out = append(out, c.items[it.Value()])
	}
	return out
}

// Item returns the item with the given id.
func (c *Conversation) Item(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// Observe applies a server event to the mirror. Events that do not concern
// conversation items are ignored.
func (c *Conversation) Observe(ev *ServerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case EventConversationCreated:
		if ev.Conversation != nil {
			c.id = ev.Conversation.ID
		}
	case EventConversationItemCreated:
		if ev.Item != nil && ev.Item.ID != "" {
			c.insert(ev.PreviousItemID, *ev.Item)
		}
	case EventConversationItemRetrieved, EventResponseOutputItemDone:
		if ev.Item != nil && ev.Item.ID != "" {
			if _, ok := c.items[ev.Item.ID]; ok {
				c.items[ev.Item.ID] = *ev.Item
			}
		}
	case EventConversationItemDeleted:
		if idx := c.order.IndexOf(ev.ItemID); idx >= 0 {
			c.order.Remove(idx)
			delete(c.items, ev.ItemID)
		}
	case EventConversationItemTruncated:
		c.updatePart(ev.ItemID, ev.ContentIndex, func(item *Item, i int) {
			item.Content[i].Audio = ""
			item.Content[i].Transcript = ""
		})
	case EventInputAudioTranscriptionCompleted:
		c.updatePart(ev.ItemID, ev.ContentIndex, func(item *Item, i int) {
			item.Content[i].Transcript = ev.Transcript
		})
	case EventResponseDone:
		if ev.Response == nil {
			return
		}
		for _, out := range ev.Response.Output {
			if _, ok := c.items[out.ID]; ok {
				c.items[out.ID] = out
			}
		}
	}
}

// insert places item after previous. An empty or unknown previous appends;
// "root" inserts at the beginning. An item that is already present is
// replaced in place.
func (c *Conversation) insert(previous string, item Item) {
	if _, ok := c.items[item.ID]; ok {
		c.items[item.ID] = item
		return
	}
	c.items[item.ID] = item
	switch {
	case previous == "root":
		c.order.Prepend(item.ID)
	case previous == "":
		c.order.Append(item.ID)
	default:
		idx := c.order.IndexOf(previous)
		if idx < 0 {
			c.order.Append(item.ID)
			return
		}
		c.order.Insert(idx+1, item.ID)
	}
}

func (c *Conversation) updatePart(itemID string, index int, fn func(item *Item, i int)) {
	item, ok := c.items[itemID]
	if !ok || index < 0 || index >= len(item.Content) {
		return
	}
	content := make([]oaikit.ContentPart, len(item.Content))
	copy(content, item.Content)
	item.Content = content
	fn(&item, index)
	c.items[itemID] = item
}
