package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// maxSlugAttempts bounds the numeric-suffix disambiguation loop.
const maxSlugAttempts = 50

// DictionaryResolver resolves shared reference entities for one import item.
// It is constructed over a transaction-bound store, so every resolution
// joins the item's transaction. All get-or-create paths rely on storage
// uniqueness constraints rather than check-then-insert.
type DictionaryResolver struct {
	store catalog.Store
}

// NewDictionaryResolver creates a resolver over the given store
func NewDictionaryResolver(store catalog.Store) *DictionaryResolver {
	return &DictionaryResolver{store: store}
}

// ResolveCategoryPath walks a slash-delimited path root to leaf, creating
// any missing node. Empty segments are skipped; an empty path resolves to
// nil.
func (r *DictionaryResolver) ResolveCategoryPath(ctx context.Context, path string) (*catalog.Category, error) {
	var leaf *catalog.Category
	for _, segment := range strings.Split(path, "/") {
		name := strings.TrimSpace(segment)
		if name == "" {
			continue
		}
		var parentID *uuid.UUID
		if leaf != nil {
			id := leaf.ID
			parentID = &id
		}
		node, err := r.store.Categories().GetOrCreate(ctx, name, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", name, err)
		}
		leaf = node
	}
	return leaf, nil
}

// ResolveBrand resolves a brand reference, or nil when the reference is
// incomplete.
func (r *DictionaryResolver) ResolveBrand(ctx context.Context, ref catalog.EntityRef) (*catalog.Brand, error) {
	if ref.UID == "" || ref.Name == "" {
		return nil, nil
	}
	return r.store.Brands().GetOrCreate(ctx, ref.UID, ref.Name)
}

// ResolveModel resolves a product model reference, or nil when the reference
// is incomplete.
func (r *DictionaryResolver) ResolveModel(ctx context.Context, ref catalog.ModelRef) (*catalog.ProductModel, error) {
	if ref.UID == "" || ref.Name == "" {
		return nil, nil
	}
	return r.store.Models().GetOrCreate(ctx, ref.UID, ref.Name, ref.GroupCode)
}

// ResolveAttribute resolves an attribute by name, creating it with a type
// classified from the sample value on first sight. Slug collisions with a
// different attribute are disambiguated with an incrementing numeric suffix.
func (r *DictionaryResolver) ResolveAttribute(ctx context.Context, name, sampleValue string) (*catalog.Attribute, error) {
	attr, err := r.store.Attributes().FindByName(ctx, name)
	if err == nil {
		return attr, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	baseSlug := Slugify(name)
	if baseSlug == "" {
		baseSlug = "attribute"
	}

	slug := baseSlug
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		candidate := catalog.NewAttribute(name, slug, sampleValue)
		createErr := r.store.Attributes().Create(ctx, candidate)
		if createErr == nil {
			return candidate, nil
		}
		if !errors.Is(createErr, shared.ErrAlreadyExists) {
			return nil, createErr
		}

		// Either the name lost a race to a concurrent worker, or the slug
		// belongs to a different attribute. Re-fetch by name to tell apart.
		existing, findErr := r.store.Attributes().FindByName(ctx, name)
		if findErr == nil {
			return existing, nil
		}
		if !errors.Is(findErr, shared.ErrNotFound) {
			return nil, findErr
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, attempt)
	}
	return nil, fmt.Errorf("resolve attribute %q: could not find a unique slug", name)
}

// ResolveAttributeValue resolves the dictionary entry of a select attribute,
// assigning insertion-order sort positions to new entries.
func (r *DictionaryResolver) ResolveAttributeValue(ctx context.Context, attribute *catalog.Attribute, rawValue string) (*catalog.AttributeValue, error) {
	if attribute.Type != catalog.AttributeTypeSelect {
		return nil, fmt.Errorf("attribute %q is not select-typed", attribute.Name)
	}
	count, err := r.store.AttributeValues().CountByAttribute(ctx, attribute.ID)
	if err != nil {
		return nil, err
	}
	return r.store.AttributeValues().GetOrCreate(ctx, attribute.ID, rawValue, int(count))
}
