// Package bridge wires the Chatwoot webhook to the Rasa bot: it normalizes
// inbound events, classifies them, drives the bot call, and posts the
// composed reply back to the platform.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/voxbridge/chatwoot-rasa-bridge/internal/chatwoot"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/classifier"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/observability/metrics"
	"github.com/voxbridge/chatwoot-rasa-bridge/internal/rasa"
	"github.com/voxbridge/chatwoot-rasa-bridge/pkg/logging"
)

var tracer = otel.Tracer("bridge.internal.webhook")

type eventClassifier interface {
	Classify(ctx context.Context, ev chatwoot.Event) classifier.Decision
}

type botClient interface {
	Send(ctx context.Context, contactID, message string, conversationID int) (rasa.Reply, error)
}

type platformClient interface {
	CreateMessage(ctx context.Context, accountID, conversationID int, msg chatwoot.CreateMessageRequest) (json.RawMessage, error)
	ToggleTyping(ctx context.Context, accountID, conversationID int, on bool) error
}

// Config carries the handler's feature switches.
type Config struct {
	TypingStatusEnabled bool
	CSATMessage         string
}

// Handler is the webhook orchestrator.
type Handler struct {
	cfg        Config
	classifier eventClassifier
	bot        botClient
	platform   platformClient
	metrics    *metrics.BridgeMetrics
	logger     *logging.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(cfg Config, cls eventClassifier, bot botClient, platform platformClient, m *metrics.BridgeMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cls == nil {
		panic("bridge: classifier cannot be nil")
	}
	if bot == nil {
		panic("bridge: bot client cannot be nil")
	}
	if platform == nil {
		panic("bridge: platform client cannot be nil")
	}
	return &Handler{
		cfg:        cfg,
		classifier: cls,
		bot:        bot,
		platform:   platform,
		metrics:    m,
		logger:     logger,
	}
}

// HandleWebhook handles POST / requests from Chatwoot.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "bridge.webhook")
	defer span.End()
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	ev, err := chatwoot.ParseWebhook(body)
	if err != nil {
		if errors.Is(err, chatwoot.ErrMalformedEvent) {
			h.logger.Warn("malformed webhook event", "error", err)
			h.metrics.ObserveEvent("unknown", "malformed")
			http.Error(w, "Bad Request", http.StatusBadRequest)
			span.RecordError(err)
			return
		}
		h.logger.Error("webhook decode failed", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	span.SetAttributes(
		attribute.String("bridge.event", ev.Name),
		attribute.Int("bridge.conversation_id", ev.ConversationID),
		attribute.Int("bridge.account_id", ev.AccountID),
	)

	decision := h.classifier.Classify(ctx, ev)
	h.metrics.ObserveEvent(ev.Name, decision.Action.String())
	span.SetAttributes(attribute.String("bridge.decision", decision.Action.String()))

	var result json.RawMessage
	switch decision.Action {
	case classifier.ActionSendToBot:
		result, err = h.runBotFlow(ctx, ev, decision)
	case classifier.ActionSendSurvey:
		result, err = h.runSurveyFlow(ctx, ev)
	default:
		result = json.RawMessage("{}")
	}
	if err != nil {
		h.logger.Error("webhook flow failed",
			"error", err,
			"conversation_id", ev.ConversationID,
			"account_id", ev.AccountID,
		)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		span.RecordError(err)
		return
	}

	h.metrics.ObserveWebhookLatency(ev.Name, time.Since(start).Seconds())
	writeJSON(w, result)
}

// HealthCheck handles GET /health-check/ requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// runBotFlow drives one conversation turn: typing indicator on, bot call,
// compose, post, typing indicator off. Typing toggles are cosmetic and never
// fail the flow.
func (h *Handler) runBotFlow(ctx context.Context, ev chatwoot.Event, decision classifier.Decision) (json.RawMessage, error) {
	if h.cfg.TypingStatusEnabled {
		h.toggleTyping(ctx, ev, true)
	}

	reply, err := h.bot.Send(ctx, decision.ContactID, decision.Message, ev.ConversationID)
	if err != nil {
		// only a cancelled context surfaces here; the bot client already
		// degrades unavailability to an empty reply
		h.metrics.ObserveBotCall("cancelled")
		return nil, err
	}
	if reply.IsEmpty() {
		h.metrics.ObserveBotCall("empty")
	} else {
		h.metrics.ObserveBotCall("reply")
	}

	msg := ComposeMessage(reply, decision.Private)
	result, err := h.platform.CreateMessage(ctx, ev.AccountID, ev.ConversationID, msg)

	if h.cfg.TypingStatusEnabled {
		h.toggleTyping(ctx, ev, false)
	}
	return result, err
}

func (h *Handler) runSurveyFlow(ctx context.Context, ev chatwoot.Event) (json.RawMessage, error) {
	msg := ComposeSurvey(h.cfg.CSATMessage)
	return h.platform.CreateMessage(ctx, ev.AccountID, ev.ConversationID, msg)
}

func (h *Handler) toggleTyping(ctx context.Context, ev chatwoot.Event, on bool) {
	if err := h.platform.ToggleTyping(ctx, ev.AccountID, ev.ConversationID, on); err != nil {
		h.logger.Warn("typing toggle failed",
			"error", err,
			"conversation_id", ev.ConversationID,
			"on", on,
		)
	}
}

func writeJSON(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	_, _ = w.Write(body)
}
