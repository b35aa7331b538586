package services

import (
	"context"
	"fmt"
	"strings"

	"longshot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// narrativeRule matches a narrative tag by token symbol/name keywords.
// Rules are checked in order and the first match wins, so the more specific
// narratives sit above the broader ones.
type narrativeRule struct {
	tag      string
	keywords []string
}

var narrativeRules = []narrativeRule{
	{tag: "ai", keywords: []string{"ai", "gpt", "agent", "neural", "brain"}},
	{tag: "memecoin", keywords: []string{"doge", "pepe", "shib", "inu", "wif", "bonk", "cat", "moon"}},
	{tag: "defi", keywords: []string{"swap", "lend", "yield", "vault", "stake", "farm"}},
	{tag: "gaming", keywords: []string{"game", "play", "quest", "arcade", "pixel"}},
	{tag: "rwa", keywords: []string{"rwa", "estate", "gold", "bond", "treasury"}},
	{tag: "l2", keywords: []string{"rollup", "layer", "zk", "optimistic"}},
}

// NarrativeClassifier tags tokens with the market narrative they belong to
type NarrativeClassifier struct{}

// NewNarrativeClassifier creates a new classifier
func NewNarrativeClassifier() *NarrativeClassifier {
	return &NarrativeClassifier{}
}

// Classify returns the narrative tag for a token, or "" when no rule matches.
// Deterministic: the same symbol and name always produce the same tag.
func (c *NarrativeClassifier) Classify(symbol, name string) string {
	haystack := strings.ToLower(symbol + " " + name)

	for _, rule := range narrativeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.tag
			}
		}
	}

	return ""
}

// Retag decides whether a new classification should replace the current tag.
// Tags only improve: a specific tag is never replaced by no tag.
func (c *NarrativeClassifier) Retag(current *string, candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	if current != nil && *current == candidate {
		return "", false
	}
	return candidate, true
}

// RetagMarkets re-runs classification over markets without a narrative and
// applies the monotonic-improvement policy. Returns how many markets changed.
func (c *NarrativeClassifier) RetagMarkets(ctx context.Context, uowFactory interfaces.UnitOfWorkFactory, limit int) (int, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().ListUntagged(ctx, limit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, market := range markets {
		tag, ok := c.Retag(market.Narrative, c.Classify(market.TokenSymbol, market.TokenName))
		if !ok {
			continue
		}
		if err := uow.MarketRepository().UpdateNarrative(ctx, market.ID, tag); err != nil {
			return 0, err
		}
		updated++
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if updated > 0 {
		log.WithField("updated", updated).Info("Retagged market narratives")
	}

	return updated, nil
}
