package bridge

import (
	"encoding/json"

	"github.com/voxbridge/chatwoot-rasa-bridge/internal/chatwoot"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/rasa"
)

// ComposeMessage maps a normalized bot reply onto the Chatwoot create-message
// shape. Buttons become an input_select; a custom payload supplies its own
// content type and items, and when both are present the custom payload wins.
// That last-writer-wins behavior matches the deployed system and is kept as
// is. TODO: confirm with the Rasa action authors whether fragments ever carry
// buttons and custom together on purpose.
func ComposeMessage(reply rasa.Reply, private bool) chatwoot.CreateMessageRequest {
	msg := chatwoot.CreateMessageRequest{
		Content: reply.Text,
		Private: private,
		Image:   reply.Image,
	}

	if len(reply.Buttons) > 0 {
		items, err := json.Marshal(reply.Buttons)
		if err == nil {
			msg.ContentType = "input_select"
			msg.ContentAttributes = &chatwoot.MessageAttributes{Items: items}
		}
	}
	if reply.Custom != nil {
		msg.ContentType = reply.Custom.Type
		msg.ContentAttributes = &chatwoot.MessageAttributes{Items: reply.Custom.Elements}
	}
	return msg
}

// ComposeSurvey builds the customer-satisfaction prompt sent when a
// conversation resolves. The survey overrides content and content type and is
// never private.
func ComposeSurvey(prompt string) chatwoot.CreateMessageRequest {
	return chatwoot.CreateMessageRequest{
		Content:     prompt,
		ContentType: chatwoot.ContentTypeCSAT,
	}
}
