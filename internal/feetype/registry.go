// Package feetype holds the authoritative, ordered fee-type registry built
// once at startup from the fee catalog table.
package feetype

import (
	"context"
	"fmt"

	"github.com/clearvia/payops/internal/feetype/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry is effectively immutable after construction and safe for
// concurrent reads. Iteration order of All follows catalog insertion order;
// downstream report layout depends on it.
type Registry struct {
	defs  []domain.FeeTypeDefinition
	index map[domain.FeeKey]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[domain.FeeKey]int)}
}

// Register adds or overwrites a definition by key. Overwriting keeps the
// original position.
func (r *Registry) Register(def domain.FeeTypeDefinition) error {
	if def.Key == "" {
		return domain.ErrEmptyKey
	}
	if i, ok := r.index[def.Key]; ok {
		r.defs[i] = def
		return nil
	}
	r.index[def.Key] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// All returns every registered definition in stable insertion order.
func (r *Registry) All() []domain.FeeTypeDefinition {
	out := make([]domain.FeeTypeDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for a key, if registered.
func (r *Registry) Lookup(key domain.FeeKey) (domain.FeeTypeDefinition, bool) {
	i, ok := r.index[key]
	if !ok {
		return domain.FeeTypeDefinition{}, false
	}
	return r.defs[i], true
}

// LookupByID returns the definition for a fee type ID, if registered.
func (r *Registry) LookupByID(feeTypeID int64) (domain.FeeTypeDefinition, bool) {
	for _, def := range r.defs {
		if def.FeeTypeID == feeTypeID {
			return def, true
		}
	}
	return domain.FeeTypeDefinition{}, false
}

// ConditionFor returns the settings predicate gating a fee, or nil when the
// fee is unconditional. Only the card-scheme high-risk fees are gated.
func (r *Registry) ConditionFor(key domain.FeeKey) domain.Condition {
	switch key {
	case domain.FeeKeyMastercardHighRisk, domain.FeeKeyVisaHighRisk:
		return func(configuredMinor int64) bool { return configuredMinor > 0 }
	default:
		return nil
	}
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

// Load builds the registry from the fee catalog. An empty or unreadable
// catalog fails startup.
func Load(p Params) (*Registry, error) {
	types, err := p.Repo.List(context.Background(), p.DB)
	if err != nil {
		return nil, fmt.Errorf("load fee catalog: %w", err)
	}
	if len(types) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	registry := NewRegistry()
	for _, t := range types {
		if err := registry.Register(domain.FeeTypeDefinition{
			Key:          domain.FeeKey(t.Key),
			Name:         t.Name,
			IsPercentage: t.IsPercentage,
			Frequency:    t.Frequency,
			FeeTypeID:    t.ID,
		}); err != nil {
			return nil, fmt.Errorf("register fee type %q: %w", t.Key, err)
		}
	}

	p.Log.Named("feetype.registry").Info("fee catalog loaded", zap.Int("fee_types", len(types)))
	return registry, nil
}
