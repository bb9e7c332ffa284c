// Package classifier decides what the bridge does with an inbound Chatwoot
// event: drop it, route it to the bot, or send a satisfaction survey.
package classifier

import (
	"context"
	"strconv"
	"strings"

	"github.com/voxbridge/chatwoot-rasa-bridge/internal/chatwoot"
	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

// Action is the routing outcome for one event.
type Action int

const (
	ActionIgnore Action = iota
	ActionSendToBot
	ActionSendSurvey
)

// String returns the action name for logs and metric labels.
func (a Action) String() string {
	switch a {
	case ActionSendToBot:
		return "send_to_bot"
	case ActionSendSurvey:
		return "send_survey"
	default:
		return "ignore"
	}
}

// Decision is the immutable routing outcome derived once per event.
type Decision struct {
	Action       Action
	ContactID    string
	Message      string
	Private      bool
	AgentMention bool
}

// TextExtractor turns attachment URLs into text. Extraction failures must
// not abort event handling; they contribute empty text.
type TextExtractor interface {
	ExtractImage(ctx context.Context, url string) (string, error)
	ExtractPDF(ctx context.Context, url string) (string, error)
}

// Config carries the feature flags the classifier branches on.
type Config struct {
	AllowBotMention bool
	BotName         string
	EnableCSAT      bool
}

// Classifier inspects normalized events and produces routing decisions.
type Classifier struct {
	cfg       Config
	extractor TextExtractor
	logger    *logging.Logger
}

// New creates a Classifier. extractor may be nil when attachment enrichment
// is not configured.
func New(cfg Config, extractor TextExtractor, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{cfg: cfg, extractor: extractor, logger: logger}
}

// Classify derives the routing decision for one event. Rules apply in
// precedence order: bot-mention override, form-submission replacement,
// attachment enrichment, survey trigger, bot routing, ignore.
func (c *Classifier) Classify(ctx context.Context, ev chatwoot.Event) Decision {
	message := ev.Content
	contact := strconv.Itoa(ev.SenderID)
	private := ev.Private

	// 1. Agent-authored @mention reroutes an outgoing message into the bot
	// flow on behalf of the conversation's contact.
	mention := false
	if c.cfg.AllowBotMention && ev.MessageType == chatwoot.MessageTypeOutgoing &&
		strings.HasPrefix(message, "@"+c.cfg.BotName) {
		contact = strconv.Itoa(ev.ContactID)
		message = strings.TrimPrefix(message, "@"+c.cfg.BotName)
		mention = true
	}

	// 2. Form submissions replace the message content entirely with the
	// submitted values, and speak as the conversation's contact.
	if ev.Name == chatwoot.EventMessageUpdated && ev.ContentType != chatwoot.ContentTypeCSAT {
		contact = strconv.Itoa(ev.ContactID)
		message = strings.Join(ev.SubmittedValues, "\n")
	}

	// 3. A created message with attachments but no text is synthesized from
	// the attachments' extracted text, in attachment order.
	if ev.Name == chatwoot.EventMessageCreated && message == "" && len(ev.AttachmentURLs) > 0 {
		message = c.extractAttachments(ctx, ev.AttachmentURLs)
	}

	routeToBot := (ev.MessageType == chatwoot.MessageTypeIncoming || ev.Name == chatwoot.EventMessageUpdated) &&
		ev.ConversationStatus == chatwoot.StatusPending &&
		ev.ContentType != chatwoot.ContentTypeCSAT &&
		message != ""

	if routeToBot || mention {
		if mention && ev.ConversationStatus == chatwoot.StatusPending {
			// an agent poking the bot inside a pending conversation wants
			// the reply visible to the contact
			private = false
		} else if mention {
			// outside pending conversations the mention speaks as a distinct
			// agent pseudo-user and the reply stays private
			contact = "agent-" + strconv.Itoa(ev.SenderID)
		}
		return Decision{
			Action:       ActionSendToBot,
			ContactID:    contact,
			Message:      message,
			Private:      private,
			AgentMention: mention,
		}
	}

	if ev.ConversationStatus == chatwoot.StatusResolved && ev.MessageType == "" && c.cfg.EnableCSAT {
		return Decision{Action: ActionSendSurvey}
	}

	return Decision{Action: ActionIgnore}
}

// extractAttachments concatenates the extracted text of each attachment.
// PDFs route to PDF extraction, everything else to image OCR.
func (c *Classifier) extractAttachments(ctx context.Context, urls []string) string {
	if c.extractor == nil {
		return ""
	}
	var sb strings.Builder
	for _, url := range urls {
		var text string
		var err error
		if strings.HasSuffix(url, ".pdf") {
			text, err = c.extractor.ExtractPDF(ctx, url)
		} else {
			text, err = c.extractor.ExtractImage(ctx, url)
		}
		if err != nil {
			c.logger.Warn("attachment extraction failed", "url", url, "error", err)
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}
