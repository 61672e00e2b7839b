package extract

import "github.com/pricedrop/tracker-cli/internal/model"

// Registry maps sources to their extractor implementations. Dispatch is a
// table lookup resolved once per item, with amazon as the fallback for a
// source the table does not know.
type Registry struct {
	extractors map[model.Source]Extractor
	order      []model.Source // registration order for deterministic iteration
}

// NewRegistry builds the registry with all built-in extractors, applying
// rule-file overrides when rules is non-nil.
func NewRegistry(rules *Rules) *Registry {
	amazon := NewAmazon()
	flipkart := NewFlipkart()
	myntra := NewMyntra()
	if rules != nil {
		amazon.apply(rules.Amazon)
		flipkart.apply(rules.Flipkart)
		myntra.apply(rules.Myntra)
	}

	r := &Registry{extractors: make(map[model.Source]Extractor)}
	r.register(amazon)
	r.register(flipkart)
	r.register(myntra)
	return r
}

func (r *Registry) register(e Extractor) {
	r.extractors[e.Source()] = e
	r.order = append(r.order, e.Source())
}

// For returns the extractor for a source, falling back to amazon.
func (r *Registry) For(src model.Source) Extractor {
	if e, ok := r.extractors[src]; ok {
		return e
	}
	return r.extractors[model.SourceAmazon]
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []model.Source {
	out := make([]model.Source, len(r.order))
	copy(out, r.order)
	return out
}
