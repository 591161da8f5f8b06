// Package notify formats templated user notifications and hands them to a
// transport gateway. Actual message delivery is out of scope; the gateway is
// an injected collaborator.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clubhaus/backoffice/internal/domain"
)

// Gateway is the outbound transport collaborator. Implementations return
// errors instead of panicking; the core absorbs delivery failures.
type Gateway interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendMediaGroup(ctx context.Context, userID int64, items []domain.PackItem) error
	SendMedia(ctx context.Context, userID int64, item domain.PackItem) error
}

// Template keys known to the service.
const (
	TemplateRankUp         = "rank_up"
	TemplateVIPReward      = "vip_reward"
	TemplatePackReward     = "pack_reward"
	TemplateReferralBonus  = "referral_bonus"
	TemplateReferralCredit = "referral_success"
	TemplateDailyClaim     = "daily_claim"
	TemplateGenericAlert   = "generic_alert"
)

var templates = map[string]string{
	TemplateRankUp:         "You ranked up from {old_rank} to {new_rank}. Congratulations!",
	TemplateVIPReward:      "Rank reward: {days} VIP days added. Your subscription now runs until {date}.",
	TemplatePackReward:     "Reward unlocked: the {pack_name} pack for reaching {rank_name}.",
	TemplateReferralBonus:  "Welcome aboard! You earned {points} bonus points for joining through a referral.",
	TemplateReferralCredit: "Your referral joined. {points} points credited.",
	TemplateDailyClaim:     "Daily check-in complete: +{points} points. Total: {total}.",
	TemplateGenericAlert:   "Alert: {message}",
}

// Service renders notification templates and dispatches them.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewService creates a notification service on the given gateway.
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Render formats a template with the given context values. Unknown template
// keys fall back to the generic alert so a bad key never drops a message.
func Render(templateKey string, values map[string]any) string {
	tmpl, ok := templates[templateKey]
	if !ok {
		tmpl = templates[TemplateGenericAlert]
		values = map[string]any{"message": fmt.Sprintf("unknown template %q", templateKey)}
	}

	out := tmpl
	for k, v := range values {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

// Send renders the template and delivers it as a text message. A transport
// failure is logged and returned; callers in the reward path ignore it.
func (s *Service) Send(ctx context.Context, userID int64, templateKey string, values map[string]any) error {
	text := Render(templateKey, values)
	if err := s.gateway.SendText(ctx, userID, text); err != nil {
		s.logger.Error("notification send failed", "user_id", userID, "template", templateKey, "error", err)
		return err
	}
	return nil
}

// Gateway exposes the underlying transport for media deliveries.
func (s *Service) Transport() Gateway {
	return s.gateway
}
