// Package resolver registers every schema reachable from a set of input
// documents and answers canonical reference lookups.
//
// Registration recursively discovers nested sub-schemas, rewrites every $ref
// in place to its canonical absolute form, and records it as referenced.
// Resolve then runs a fixpoint over one or more external fetches until no
// referenced id remains unregistered. The generator injects synthesized
// OpenAPI schemas between two Resolve passes so their internal references are
// registered as well.
package resolver

import (
	"context"
	"reflect"
	"sort"

	"github.com/dtsgen/dtsgen"
	"github.com/dtsgen/dtsgen/dtserrors"
	"github.com/dtsgen/dtsgen/schema"
)

// MaxResolutionRounds bounds the resolve fixpoint. Each round loads documents
// for every referenced-but-unregistered id; a well-formed input set converges
// in a handful of rounds.
const MaxResolutionRounds = 20

// Resolver is the schema registry and reference resolver.
type Resolver struct {
	// Loader fetches external documents referenced across document
	// boundaries. If nil, any cross-document reference fails Resolve.
	Loader Loader
	// Logger is the structured logger for debug output.
	// If nil, logging is disabled.
	Logger dtsgen.Logger

	// schemas maps canonical absolute id to the registered schema.
	schemas map[string]*schema.Schema
	// referenced accumulates every canonical id seen in a $ref.
	referenced map[string]bool
	// loaded tracks document locations already fetched, so a missing
	// fragment inside a loaded document fails instead of refetching.
	loaded map[string]bool
}

// New creates an empty Resolver with the given document loader.
func New(loader Loader) *Resolver {
	return &Resolver{
		Loader:     loader,
		schemas:    make(map[string]*schema.Schema),
		referenced: make(map[string]bool),
		loaded:     make(map[string]bool),
	}
}

func (r *Resolver) log() dtsgen.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return dtsgen.NopLogger{}
}

// RegisterDocument registers a parsed document and recursively discovers and
// registers every nested sub-schema inside it. Every $ref encountered is
// rewritten to its canonical absolute form and recorded as referenced.
func (r *Resolver) RegisterDocument(doc *schema.Schema) error {
	r.add(doc)
	r.loaded[doc.ID.Base()] = true
	if doc.OpenAPI != schema.OpenAPINone {
		return r.walkOpenAPI(doc)
	}
	return r.walkNode(doc, doc.Content, []schema.ID{doc.ID})
}

// AddSchema injects a schema constructed by the generator (an OpenAPI
// request/parameter/body shape) and discovers its nested sub-schemas. The id
// is also marked referenced so the next Resolve pass folds it in.
func (r *Resolver) AddSchema(s *schema.Schema) error {
	r.add(s)
	r.referenced[s.ID.String()] = true
	return r.walkNode(s, s.Content, []schema.ID{s.ID})
}

// AddReference marks a canonical id as referenced without registering content.
func (r *Resolver) AddReference(id schema.ID) {
	if !id.IsEmpty() {
		r.referenced[id.String()] = true
	}
}

// Dereference returns the registered schema for a canonical id. A miss is a
// hard invariant violation: a completed Resolve pass must have registered
// every id that is later dereferenced.
func (r *Resolver) Dereference(id schema.ID) (*schema.Schema, error) {
	if s, ok := r.schemas[id.String()]; ok {
		return s, nil
	}
	return nil, &dtserrors.ResolutionError{
		ID:      id.String(),
		Message: "schema is not registered",
	}
}

// Registered returns every registered schema, sorted by canonical id.
func (r *Resolver) Registered() []*schema.Schema {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*schema.Schema, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.schemas[id])
	}
	return out
}

// Resolve ensures every referenced id is registered, fetching additional
// documents through the Loader as needed. It repeats until no new references
// appear. Resolve may be called multiple times sequentially but never
// concurrently with itself.
func (r *Resolver) Resolve(ctx context.Context) error {
	for round := 0; ; round++ {
		if round >= MaxResolutionRounds {
			return &dtserrors.ResourceLimitError{
				ResourceType: "resolution_rounds",
				Limit:        MaxResolutionRounds,
				Message:      "reference fixpoint did not converge",
			}
		}

		pending := r.pending()
		if len(pending) == 0 {
			r.log().Debug("resolution fixpoint reached", "rounds", round, "registered", len(r.schemas))
			return nil
		}
		r.log().Debug("resolution round", "round", round, "pending", len(pending))

		progress := false
		for _, idStr := range pending {
			id := schema.ParseID(idStr)

			extracted, err := r.extract(id)
			if err != nil {
				return err
			}
			if extracted {
				progress = true
				continue
			}

			base := id.Base()
			if base == "" || r.loaded[base] {
				// Nothing left to fetch for this id; fail below unless a
				// later registration this round supplies it.
				continue
			}
			if r.Loader == nil {
				return &dtserrors.ResolutionError{
					ID:      idStr,
					Message: "cross-document reference requires a document loader",
				}
			}

			r.log().Debug("loading referenced document", "location", base, "ref", idStr)
			raw, err := r.Loader.Load(ctx, base)
			if err != nil {
				return &dtserrors.ResolutionError{
					ID:      idStr,
					Message: "referenced document could not be loaded",
					Cause:   err,
				}
			}
			doc, err := schema.ParseDocument(raw, base)
			if err != nil {
				return err
			}
			if err := r.RegisterDocument(doc); err != nil {
				return err
			}
			// The fetched document may declare an id different from its
			// fetch location; mark the location too, so a still-missing
			// id fails next round instead of refetching forever.
			r.loaded[base] = true
			progress = true
		}

		if !progress {
			return &dtserrors.ResolutionError{
				ID:      pending[0],
				Message: "referenced schema not found after full resolve",
			}
		}
	}
}

// pending returns the sorted set of referenced ids with no registration yet.
func (r *Resolver) pending() []string {
	var out []string
	for id := range r.referenced {
		if _, ok := r.schemas[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// extract registers a referenced fragment id by pointing into its already
// registered enclosing document, when that document is present.
func (r *Resolver) extract(id schema.ID) (bool, error) {
	if id.Pointer() == "" {
		return false, nil
	}
	docID := schema.ParseID(id.Base())
	doc, ok := r.schemas[docID.String()]
	if !ok {
		return false, nil
	}
	sub, err := schema.SubSchema(doc, id.Pointer(), id)
	if err != nil {
		return false, &dtserrors.ResolutionError{
			ID:      id.String(),
			Message: "referenced schema not found in its document",
			Cause:   err,
		}
	}
	r.add(sub)
	return true, nil
}

// add registers a schema under its canonical id. Re-registering the same id
// with the same content is a no-op so that reference cycles short-circuit
// instead of re-descending; a later registration with different content
// supersedes the earlier one (synthesized schemas replacing placeholders).
func (r *Resolver) add(s *schema.Schema) bool {
	key := s.ID.String()
	if existing, ok := r.schemas[key]; ok && sameNode(existing.Content, s.Content) {
		return false
	}
	r.schemas[key] = s
	r.log().Debug("registered schema", "id", key, "operation", s.Operation)
	return true
}

// sameNode reports whether two content nodes are the same in-memory tree.
func sameNode(a, b any) bool {
	if am, ok := a.(map[string]any); ok {
		bm, ok := b.(map[string]any)
		return ok && reflect.ValueOf(am).Pointer() == reflect.ValueOf(bm).Pointer()
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return false
}
