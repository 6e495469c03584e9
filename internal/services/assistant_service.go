package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/cart"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/speech"
)

const (
	Greeting = "Namaste! Shourya Wada Dhaba mein aapka swagat hai. Main Raju, aapka waiter. Aaj kya khayenge? Veg ya Non-Veg?"

	historyTurns = 10
)

// Where the client should go next after an assistant reply.
const (
	NavigateCheckout = "checkout"
	NavigateBooking  = "booking"
)

type AssistantReply struct {
	Intent    models.Intent `json:"intent"`
	Cart      cart.Summary  `json:"cart"`
	Skipped   []string      `json:"skipped,omitempty"`
	Navigate  string        `json:"navigate,omitempty"`
	Retryable bool          `json:"retryable,omitempty"`
}

type AssistantService interface {
	Greeting() string
	HandleMessage(ctx context.Context, sessionID, text string) (AssistantReply, error)
	SpeechError(sessionID, code, detail string) AssistantReply
	SelectVoice(voices []speech.Voice, localeHint string) (speech.Voice, bool)
	Forget(ctx context.Context, sessionID string) error
}

type assistantService struct {
	parser  IntentParser
	carts   CartService
	menu    Menu
	history HistoryStore
	ttl     time.Duration
	logger  *slog.Logger
}

func NewAssistantService(parser IntentParser, carts CartService, menu Menu, history HistoryStore, ttl time.Duration, logger *slog.Logger) AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &assistantService{parser: parser, carts: carts, menu: menu, history: history, ttl: ttl, logger: logger}
}

func (s *assistantService) Greeting() string {
	return Greeting
}

// HandleMessage parses one utterance and applies it to the session's cart.
// Dishes that cannot be added are reported in Skipped.
func (s *assistantService) HandleMessage(ctx context.Context, sessionID, text string) (AssistantReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return AssistantReply{}, apperrors.Validation("message is empty")
	}

	past, err := s.history.GetHistory(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load chat history", "session_id", sessionID, "error", err)
		past = nil
	}

	intent, err := s.parser.Parse(ctx, text, s.menu.List(), past...)
	if err != nil {
		s.logger.Warn("intent parsing failed", "session_id", sessionID, "error", err)
		intent = models.Intent{Response: speech.FallbackReply, Action: models.ActionNone}
	}

	reply := AssistantReply{Intent: intent}
	switch intent.Action {
	case models.ActionAddOrder:
		for _, line := range intent.Orders {
			for i := 0; i < min(line.Quantity, MaxLineQuantity); i++ {
				if _, err := s.carts.Add(sessionID, line.ItemID); err != nil {
					reply.Skipped = append(reply.Skipped, s.itemName(line.ItemID))
					break
				}
			}
		}
	case models.ActionCheckout:
		reply.Navigate = NavigateCheckout
	case models.ActionNavigateBooking:
		reply.Navigate = NavigateBooking
	}
	reply.Cart = s.carts.Summary(sessionID)

	s.remember(ctx, sessionID, "Customer: "+text, "Waiter: "+intent.Response)
	return reply, nil
}

func (s *assistantService) itemName(id string) string {
	if it, ok := s.menu.Get(id); ok {
		return it.Name
	}
	return id
}

func (s *assistantService) remember(ctx context.Context, sessionID string, lines ...string) {
	for _, l := range lines {
		if err := s.history.AppendHistory(ctx, sessionID, l, 2*historyTurns, s.ttl); err != nil {
			s.logger.Warn("failed to save chat history", "session_id", sessionID, "error", err)
			return
		}
	}
}

// SpeechError turns a failed voice capture into an inline reply. The cart is
// never touched.
func (s *assistantService) SpeechError(sessionID, code, detail string) AssistantReply {
	ce := speech.ParseCaptureError(code, detail)
	s.logger.Info("voice capture failed", "session_id", sessionID, "code", ce.Code, "detail", ce.Detail)
	return AssistantReply{
		Intent:    models.Intent{Response: ce.Message(), Action: models.ActionNone},
		Cart:      s.carts.Summary(sessionID),
		Retryable: speech.Retryable(ce),
	}
}

func (s *assistantService) SelectVoice(voices []speech.Voice, localeHint string) (speech.Voice, bool) {
	return speech.SelectVoice(voices, localeHint)
}

func (s *assistantService) Forget(ctx context.Context, sessionID string) error {
	if err := s.history.DeleteHistory(ctx, sessionID); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
