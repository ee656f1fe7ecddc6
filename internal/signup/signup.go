// Package signup restricts Cognito self sign-up to a list of email domains.
package signup

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"vto/internal/domain"
)

// Gate is the pre-sign-up trigger. An empty domain list admits everyone.
type Gate struct {
	allowed []string
	logger  zerolog.Logger
}

func NewGate(allowedDomains []string, logger *zerolog.Logger) *Gate {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	allowed := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			allowed = append(allowed, d)
		}
	}
	return &Gate{allowed: allowed, logger: l}
}

// Handle returns the event unchanged when no restriction applies, marks allowed
// users as auto-confirmed and rejects everyone else.
func (g *Gate) Handle(_ context.Context, event events.CognitoEventUserPoolsPreSignup) (events.CognitoEventUserPoolsPreSignup, error) {
	g.logger.Info().Str("user_pool_id", event.UserPoolID).Msg("pre sign-up trigger invoked")

	if len(g.allowed) == 0 {
		g.logger.Info().Msg("no email domain restrictions configured, allowing all domains")
		return event, nil
	}

	email := event.Request.UserAttributes["email"]
	if email == "" {
		g.logger.Warn().Msg("email not found in the event")
		return event, nil
	}

	emailDomain, err := domainOf(email)
	if err != nil {
		g.logger.Error().Str("email", email).Msg("invalid email format")
		return event, err
	}

	if !g.allows(emailDomain) {
		g.logger.Warn().Str("domain", emailDomain).Msg("email domain not allowed")
		return event, fmt.Errorf("%w with email domain: %s. Please use an email from one of these domains: %s",
			domain.ErrSignUpNotAllowed, emailDomain, strings.Join(g.allowed, ", "))
	}

	g.logger.Info().Str("domain", emailDomain).Msg("email domain allowed")
	event.Response.AutoConfirmUser = true
	return event, nil
}

func (g *Gate) allows(emailDomain string) bool {
	for _, d := range g.allowed {
		if d == emailDomain {
			return true
		}
	}
	return false
}

// domainOf returns the lower-cased part between the first and second "@".
func domainOf(email string) (string, error) {
	_, rest, ok := strings.Cut(email, "@")
	if !ok {
		return "", domain.ErrInvalidEmail
	}
	d, _, _ := strings.Cut(rest, "@")
	return strings.ToLower(d), nil
}
