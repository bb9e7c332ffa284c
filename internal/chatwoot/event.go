package chatwoot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedEvent indicates the webhook body matched neither known layout.
var ErrMalformedEvent = errors.New("chatwoot: malformed webhook event")

// Event is the canonical form of an inbound webhook event. Both payload
// layouts normalize into this shape exactly once; downstream code never
// branches on field presence again.
type Event struct {
	Name               string
	MessageType        string
	Content            string
	ContentType        string
	Private            bool
	ConversationID     int
	ConversationStatus string
	AccountID          int
	SenderID           int
	ContactID          int
	AttachmentURLs     []string
	SubmittedValues    []string
}

// ParseWebhook decodes a raw webhook body into its canonical Event.
func ParseWebhook(body []byte) (Event, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return NormalizeEvent(payload)
}

// NormalizeEvent resolves the union-shaped payload into a single Event.
// Message events locate conversation id and status in the conversation
// object; status updates carry status at the top level and ids inside the
// first element of messages.
func NormalizeEvent(payload WebhookPayload) (Event, error) {
	ev := Event{
		Name:    payload.Event,
		Private: payload.Private,
	}
	if payload.MessageType != nil {
		ev.MessageType = *payload.MessageType
	}
	if payload.Content != nil {
		ev.Content = *payload.Content
	}
	if payload.ContentType != nil {
		ev.ContentType = *payload.ContentType
	}
	if payload.Sender != nil {
		ev.SenderID = payload.Sender.ID
	}

	switch {
	case payload.Conversation != nil:
		ev.ConversationID = payload.Conversation.ID
		ev.ConversationStatus = payload.Conversation.Status
		ev.ContactID = payload.Conversation.ContactInbox.ContactID
		for _, msg := range payload.Conversation.Messages {
			for _, att := range msg.Attachments {
				ev.AttachmentURLs = append(ev.AttachmentURLs, att.DataURL)
			}
		}
	case len(payload.Messages) > 0:
		ev.ConversationID = payload.Messages[0].ConversationID
		ev.ConversationStatus = payload.Status
	default:
		return Event{}, fmt.Errorf("%w: no conversation or messages", ErrMalformedEvent)
	}

	switch {
	case payload.Account != nil:
		ev.AccountID = payload.Account.ID
	case len(payload.Messages) > 0:
		ev.AccountID = payload.Messages[0].AccountID
	default:
		return Event{}, fmt.Errorf("%w: no account id", ErrMalformedEvent)
	}

	if payload.ContentAttributes != nil {
		for _, sv := range payload.ContentAttributes.SubmittedValues {
			ev.SubmittedValues = append(ev.SubmittedValues, stringifyValue(sv.Value))
		}
	}

	return ev, nil
}

// stringifyValue renders a submitted form value the way users typed or chose
// it. JSON numbers decode as float64, so integral values must not pick up an
// exponent or trailing zeros.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
