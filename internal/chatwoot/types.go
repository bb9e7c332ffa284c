package chatwoot

import "encoding/json"

// Webhook event names delivered by Chatwoot agent-bot subscriptions.
const (
	EventMessageCreated = "message_created"
	EventMessageUpdated = "message_updated"
)

// Conversation statuses.
const (
	StatusPending  = "pending"
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Message types carried on message events.
const (
	MessageTypeIncoming = "incoming"
	MessageTypeOutgoing = "outgoing"
)

// ContentTypeCSAT marks customer-satisfaction survey messages.
const ContentTypeCSAT = "input_csat"

// Account identifies the Chatwoot account the event belongs to.
type Account struct {
	ID int `json:"id"`
}

// Sender identifies who authored the message.
type Sender struct {
	ID int `json:"id"`
}

// ContactInbox links a conversation to its underlying contact.
type ContactInbox struct {
	ContactID int `json:"contact_id"`
}

// Attachment is a file attached to a conversation message.
type Attachment struct {
	ID       int    `json:"id"`
	FileType string `json:"file_type"`
	DataURL  string `json:"data_url"`
}

// ConversationMessage is a message embedded in a conversation payload. The
// status_update event shape carries conversation and account ids here instead
// of in a top-level conversation object.
type ConversationMessage struct {
	ID             int          `json:"id"`
	AccountID      int          `json:"account_id"`
	ConversationID int          `json:"conversation_id"`
	Attachments    []Attachment `json:"attachments"`
}

// Conversation is the conversation object embedded in message events.
type Conversation struct {
	ID           int                   `json:"id"`
	Status       string                `json:"status"`
	ContactInbox ContactInbox          `json:"contact_inbox"`
	Messages     []ConversationMessage `json:"messages"`
}

// SubmittedValue is one selected value of a form/input_select submission.
// Value may arrive as a string, number or bool depending on the form field.
type SubmittedValue struct {
	Value any `json:"value"`
}

// ContentAttributes carries structured message metadata on update events.
type ContentAttributes struct {
	SubmittedValues []SubmittedValue `json:"submitted_values"`
}

// WebhookPayload is the raw JSON body Chatwoot posts to the bridge. It is a
// union of two layouts: message events carry a conversation object, while
// status updates carry a top-level status plus a messages array.
type WebhookPayload struct {
	Event             string                `json:"event"`
	MessageType       *string               `json:"message_type"`
	Private           bool                  `json:"private"`
	Content           *string               `json:"content"`
	ContentType       *string               `json:"content_type"`
	ContentAttributes *ContentAttributes    `json:"content_attributes"`
	Conversation      *Conversation         `json:"conversation"`
	Sender            *Sender               `json:"sender"`
	Account           *Account              `json:"account"`
	Status            string                `json:"status"`
	Messages          []ConversationMessage `json:"messages"`
}

// CreateMessageRequest is the body of the Chatwoot create-message call.
// Image is carried out of band; when set the request is sent as a multipart
// upload instead of JSON.
type CreateMessageRequest struct {
	Content           string             `json:"content"`
	ContentType       string             `json:"content_type,omitempty"`
	ContentAttributes *MessageAttributes `json:"content_attributes,omitempty"`
	Private           bool               `json:"private"`

	Image []byte `json:"-"`
}

// MessageAttributes holds the interactive items of an outbound message.
type MessageAttributes struct {
	Items json.RawMessage `json:"items"`
}
