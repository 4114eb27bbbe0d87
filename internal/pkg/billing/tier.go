package billing

import (
	"strings"

	"github.com/ManuelReschke/tiersync/app/models"
)

// TierMap resolves Stripe product ids to membership tiers. It is built once
// at startup and never mutated, so it is safe for concurrent use.
type TierMap struct {
	byProduct map[string]string
	fallback  string
}

// NewTierMap copies entries (product id -> tier). Blank keys and values are
// skipped. An empty fallback means models.TierGold.
func NewTierMap(entries map[string]string, fallback string) TierMap {
	m := make(map[string]string, len(entries))
	for product, tier := range entries {
		p := strings.TrimSpace(product)
		t := strings.TrimSpace(tier)
		if p == "" || t == "" {
			continue
		}
		m[p] = t
	}
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = models.TierGold
	}
	return TierMap{byProduct: m, fallback: fallback}
}

// Resolve returns the mapped tier for product, or the fallback tier.
func (t TierMap) Resolve(product string) string {
	if tier, ok := t.byProduct[product]; ok {
		return tier
	}
	return t.fallback
}

func (t TierMap) Fallback() string {
	return t.fallback
}

func (t TierMap) Len() int {
	return len(t.byProduct)
}
