package oaikit

import (
	"context"
	"net/http"
	"net/url"
)

const conversationsEndpoint = "conversations"

// ConversationInclude adds optional data to listed or created items.
type ConversationInclude string

const (
	IncludeWebSearchSources          ConversationInclude = "web_search_call.action.sources"
	IncludeCodeInterpreterOutputs    ConversationInclude = "code_interpreter_call.outputs"
	IncludeFileSearchResults         ConversationInclude = "file_search_call.results"
	IncludeInputImageURL             ConversationInclude = "message.input_image.image_url"
	IncludeReasoningEncryptedContent ConversationInclude = "reasoning.encrypted_content"
)

// Conversation is persistent server-side conversation state that
// responses can be attached to.
type Conversation struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate requires the id.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return missingField(conversationsEndpoint, "id")
	}
	return nil
}

// ConversationRequest creates a conversation, optionally seeded with items.
type ConversationRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`

	// Items are added to the conversation (at most 20).
	Items []InputItem `json:"items,omitempty"`
}

// Validate checks the item count and every item.
func (r *ConversationRequest) Validate() error {
	return validateConversationItems(r.Items, false)
}

func validateConversationItems(items []InputItem, required bool) error {
	if required && len(items) == 0 {
		return missingField(conversationsEndpoint, "items")
	}
	if len(items) > 20 {
		return invalidArgument(conversationsEndpoint, "at most 20 items can be added at once, got %d", len(items))
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return invalidArgument(conversationsEndpoint, "items[%d]: %v", i, err)
		}
	}
	return nil
}

type conversationItems struct {
	Items []InputItem `json:"items"`
}

type conversationUpdate struct {
	Metadata map[string]string `json:"metadata"`
}

func includeValues(q url.Values, include []ConversationInclude) url.Values {
	if len(include) == 0 {
		return q
	}
	if q == nil {
		q = url.Values{}
	}
	for _, in := range include {
		q.Add("include", string(in))
	}
	return q
}

// CreateConversation creates a conversation.
//
// Example:
//
//	conv, err := client.CreateConversation(ctx, &oaikit.ConversationRequest{
//	    Metadata: map[string]string{"topic": "demo"},
//	    Items: []oaikit.InputItem{
//	        oaikit.MessageItem(oaikit.NewTextMessage(types.RoleUser, "Hello!")),
//	    },
//	})
func (c *Client) CreateConversation(ctx context.Context, req *ConversationRequest) (*Conversation, error) {
	if req == nil {
		req = &ConversationRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, classify(conversationsEndpoint, err)
	}
	var conv Conversation
	if err := c.doJSON(ctx, http.MethodPost, conversationsEndpoint, nil, "", req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// RetrieveConversation returns a conversation by id.
func (c *Client) RetrieveConversation(ctx context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	var conv Conversation
	if err := c.doJSON(ctx, http.MethodGet, joinPath(conversationsEndpoint, id), nil, "", nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateConversation replaces the metadata of a conversation.
func (c *Client) UpdateConversation(ctx context.Context, id string, metadata map[string]string) (*Conversation, error) {
	if id == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	if metadata == nil {
		return nil, missingField(conversationsEndpoint, "metadata")
	}
	var conv Conversation
	if err := c.doJSON(ctx, http.MethodPost, joinPath(conversationsEndpoint, id), nil, "", conversationUpdate{Metadata: metadata}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation deletes a conversation. Its items are not deleted.
func (c *Client) DeleteConversation(ctx context.Context, id string) (*DeletedObject, error) {
	if id == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	var deleted DeletedObject
	if err := c.doJSON(ctx, http.MethodDelete, joinPath(conversationsEndpoint, id), nil, "", nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// CreateConversationItems appends items to a conversation and returns them
// as stored.
func (c *Client) CreateConversationItems(ctx context.Context, id string, items []InputItem, include ...ConversationInclude) (*List[OutputItem], error) {
	if id == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	if err := validateConversationItems(items, true); err != nil {
		return nil, classify(conversationsEndpoint, err)
	}
	var list List[OutputItem]
	path := joinPath(conversationsEndpoint, id, "items")
	if err := c.doJSON(ctx, http.MethodPost, path, includeValues(nil, include), "", conversationItems{Items: items}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListConversationItems lists the items of a conversation with cursor
// pagination.
func (c *Client) ListConversationItems(ctx context.Context, id string, params ListParams, include ...ConversationInclude) (*List[OutputItem], error) {
	if id == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	if err := params.Validate(); err != nil {
		return nil, classify(conversationsEndpoint, err)
	}
	var list List[OutputItem]
	path := joinPath(conversationsEndpoint, id, "items")
	if err := c.doJSON(ctx, http.MethodGet, path, includeValues(params.values(), include), "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RetrieveConversationItem returns one item of a conversation.
func (c *Client) RetrieveConversationItem(ctx context.Context, conversationID, itemID string, include ...ConversationInclude) (*OutputItem, error) {
	if conversationID == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	if itemID == "" {
		return nil, missingField(conversationsEndpoint, "item_id")
	}
	var item OutputItem
	path := joinPath(conversationsEndpoint, conversationID, "items", itemID)
	if err := c.doJSON(ctx, http.MethodGet, path, includeValues(nil, include), "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteConversationItem removes an item and returns the updated
// conversation.
func (c *Client) DeleteConversationItem(ctx context.Context, conversationID, itemID string) (*Conversation, error) {
	if conversationID == "" {
		return nil, missingField(conversationsEndpoint, "conversation_id")
	}
	if itemID == "" {
		return nil, missingField(conversationsEndpoint, "item_id")
	}
	var conv Conversation
	path := joinPath(conversationsEndpoint, conversationID, "items", itemID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, "", nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}
