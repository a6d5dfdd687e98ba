package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// ProductImportHandler consumes the catalog-import lane. One message is one
// feed item, applied in a single transaction: dictionary resolution, product
// upsert, barcode and attribute rewrite, certificate sync. The media message
// is enqueued only after the transaction commits.
type ProductImportHandler struct {
	store       catalog.Store
	queue       Enqueuer
	maxAttempts int
	timeout     time.Duration
	mediaTries  int
	logger      *zap.Logger
}

// NewProductImportHandler creates the import handler
func NewProductImportHandler(store catalog.Store, q Enqueuer, maxAttempts int, timeout time.Duration, mediaTries int, logger *zap.Logger) *ProductImportHandler {
	return &ProductImportHandler{
		store:       store,
		queue:       q,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		mediaTries:  mediaTries,
		logger:      logger.Named("product-import"),
	}
}

func (h *ProductImportHandler) Lane() string           { return LaneImport }
func (h *ProductImportHandler) MaxAttempts() int       { return h.maxAttempts }
func (h *ProductImportHandler) Timeout() time.Duration { return h.timeout }
func (h *ProductImportHandler) Backoff() time.Duration { return 0 }

// Handle applies one feed item
func (h *ProductImportHandler) Handle(ctx context.Context, msg *queue.Message) error {
	var job ImportJob
	if err := msg.DecodePayload(&job); err != nil {
		return queue.Fatal(fmt.Errorf("decode import payload: %w", err))
	}
	if job.Item == nil || job.Item.ExternalID == "" {
		return queue.Fatal(errors.New("import payload has no external id"))
	}

	var productID uuid.UUID
	err := h.store.InTransaction(ctx, func(tx catalog.Store) error {
		id, err := h.applyItem(ctx, tx, job.Item)
		if err != nil {
			return err
		}
		productID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", job.Item.ExternalID, err)
	}

	h.logger.Debug("product imported",
		zap.String("external_id", job.Item.ExternalID),
		zap.String("product_id", productID.String()),
	)

	if job.SkipMedia {
		return nil
	}

	// Media dispatch is deliberately outside the transaction. A crash
	// between commit and enqueue leaves the product without media until the
	// next re-import.
	product, err := h.store.Products().FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("re-read product %s: %w", productID, err)
	}
	mediaMsg, err := queue.NewMessage(LaneMedia, h.mediaTries, MediaJob{
		ProductID: product.ID,
		Item:      job.Item,
	})
	if err != nil {
		return fmt.Errorf("build media message: %w", err)
	}
	if err := h.queue.Enqueue(ctx, mediaMsg); err != nil {
		return fmt.Errorf("enqueue media message: %w", err)
	}
	return nil
}

// applyItem runs the import steps against a transaction-bound store and
// returns the persisted product ID.
func (h *ProductImportHandler) applyItem(ctx context.Context, tx catalog.Store, item *catalog.CatalogItemPayload) (uuid.UUID, error) {
	resolver := NewDictionaryResolver(tx)

	leaf, err := resolver.ResolveCategoryPath(ctx, item.CategoryPath)
	if err != nil {
		return uuid.Nil, err
	}
	brand, err := resolver.ResolveBrand(ctx, item.Brand)
	if err != nil {
		return uuid.Nil, err
	}
	model, err := resolver.ResolveModel(ctx, item.Model)
	if err != nil {
		return uuid.Nil, err
	}

	product := catalog.ProductFromPayload(item)
	if brand != nil {
		id := brand.ID
		product.BrandID = &id
	}
	if model != nil {
		id := model.ID
		product.ModelID = &id
	}

	persisted, err := tx.Products().Upsert(ctx, product)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert product: %w", err)
	}

	if leaf != nil {
		if err := tx.Categories().AttachProduct(ctx, leaf.ID, persisted.ID); err != nil {
			return uuid.Nil, fmt.Errorf("attach category: %w", err)
		}
	}

	if err := tx.Products().ReplaceBarcodes(ctx, persisted.ID, item.Barcodes); err != nil {
		return uuid.Nil, fmt.Errorf("replace barcodes: %w", err)
	}

	values, err := h.buildAttributeValues(ctx, tx, resolver, leaf, persisted.ID, item.Parameters)
	if err != nil {
		return uuid.Nil, err
	}
	if err := tx.Products().ReplaceAttributeValues(ctx, persisted.ID, values); err != nil {
		return uuid.Nil, fmt.Errorf("replace attribute values: %w", err)
	}

	certIDs, err := h.matchCertificates(ctx, tx, item.Certificates)
	if err != nil {
		return uuid.Nil, err
	}
	if err := tx.Products().SyncCertificates(ctx, persisted.ID, certIDs); err != nil {
		return uuid.Nil, fmt.Errorf("sync certificates: %w", err)
	}

	return persisted.ID, nil
}

// buildAttributeValues resolves each raw parameter into a typed value row.
// The slot is chosen by the attribute's stored type, never re-classified.
func (h *ProductImportHandler) buildAttributeValues(
	ctx context.Context,
	tx catalog.Store,
	resolver *DictionaryResolver,
	leaf *catalog.Category,
	productID uuid.UUID,
	parameters []catalog.Parameter,
) ([]*catalog.ProductAttributeValue, error) {
	var values []*catalog.ProductAttributeValue
	for _, param := range parameters {
		if param.Name == "" || param.Value == "" {
			continue
		}
		attr, err := resolver.ResolveAttribute(ctx, param.Name, param.Value)
		if err != nil {
			return nil, fmt.Errorf("resolve attribute %q: %w", param.Name, err)
		}

		var slot catalog.ValueSlot
		switch attr.Type {
		case catalog.AttributeTypeSelect:
			entry, err := resolver.ResolveAttributeValue(ctx, attr, param.Value)
			if err != nil {
				return nil, fmt.Errorf("resolve attribute value %q=%q: %w", param.Name, param.Value, err)
			}
			slot = catalog.SelectSlot(entry.ID)
		case catalog.AttributeTypeBool:
			slot = catalog.BoolSlot(catalog.ParseBoolValue(param.Value))
		case catalog.AttributeTypeNumber:
			if n, ok := catalog.ParseNumberValue(param.Value); ok {
				slot = catalog.NumberSlot(n)
			} else {
				slot = catalog.TextSlot(param.Value)
			}
		default:
			slot = catalog.TextSlot(param.Value)
		}
		values = append(values, catalog.NewProductAttributeValue(productID, attr.ID, slot))

		if leaf != nil {
			if err := tx.Categories().TagAttribute(ctx, leaf.ID, attr.ID); err != nil {
				return nil, fmt.Errorf("tag category attribute: %w", err)
			}
		}
	}
	return values, nil
}

// matchCertificates maps certificate UIDs onto pre-provisioned rows. UIDs
// with no match are dropped without error.
func (h *ProductImportHandler) matchCertificates(ctx context.Context, tx catalog.Store, uids []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, uid := range uids {
		cert, err := tx.Certificates().FindByExternalID(ctx, uid)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				h.logger.Debug("certificate reference not found, dropped", zap.String("uid", uid))
				continue
			}
			return nil, fmt.Errorf("find certificate %q: %w", uid, err)
		}
		ids = append(ids, cert.ID)
	}
	return ids, nil
}

// Ensure ProductImportHandler implements queue.Handler
var _ queue.Handler = (*ProductImportHandler)(nil)
