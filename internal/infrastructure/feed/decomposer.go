package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
)

// feedItem mirrors one <item> element of the vendor export.
type feedItem struct {
	ExternalID   string `xml:"external_id"`
	Code         string `xml:"code"`
	SKU          string `xml:"sku"`
	Name         string `xml:"name"`
	Slug         string `xml:"slug"`
	URL          string `xml:"url"`
	Barcode      string `xml:"barcode"`
	CategoryPath string `xml:"category_path"`

	BrandUID  string `xml:"brand_ref>uid"`
	BrandName string `xml:"brand_ref>name"`

	ModelUID       string `xml:"model_ref>uid"`
	ModelName      string `xml:"model_ref>name"`
	ModelGroupCode string `xml:"model_ref>group_code"`

	Description      string `xml:"description"`
	ShortDescription string `xml:"short_description"`
	Composition      string `xml:"composition"`

	IsNew           string `xml:"is_new"`
	IsMarked        string `xml:"is_marked"`
	IsLiquidation   string `xml:"is_liquidation"`
	ForMarketplaces string `xml:"for_marketplaces"`

	Parameters []struct {
		Name  string `xml:"name"`
		Value string `xml:"value"`
	} `xml:"parameters>parameter"`

	Barcodes         []string `xml:"barcodes>barcode"`
	AdditionalImages []string `xml:"additional_images>image"`
	Videos           []string `xml:"videos>video"`
	Certificates     []string `xml:"certificates>certificate"`

	MainImage string `xml:"main_image"`
}

// toPayload normalizes one raw feed item into the import unit of work.
func (it *feedItem) toPayload() *catalog.CatalogItemPayload {
	payload := &catalog.CatalogItemPayload{
		ExternalID:   strings.TrimSpace(it.ExternalID),
		Code:         strings.TrimSpace(it.Code),
		SKU:          strings.TrimSpace(it.SKU),
		Name:         strings.TrimSpace(it.Name),
		Slug:         strings.TrimSpace(it.Slug),
		URL:          strings.TrimSpace(it.URL),
		Barcode:      strings.TrimSpace(it.Barcode),
		CategoryPath: strings.TrimSpace(it.CategoryPath),
		Brand: catalog.EntityRef{
			UID:  strings.TrimSpace(it.BrandUID),
			Name: strings.TrimSpace(it.BrandName),
		},
		Model: catalog.ModelRef{
			UID:       strings.TrimSpace(it.ModelUID),
			Name:      strings.TrimSpace(it.ModelName),
			GroupCode: strings.TrimSpace(it.ModelGroupCode),
		},
		Description:      it.Description,
		ShortDescription: it.ShortDescription,
		Composition:      it.Composition,
		IsNew:            strings.TrimSpace(it.IsNew),
		IsMarked:         strings.TrimSpace(it.IsMarked),
		IsLiquidation:    strings.TrimSpace(it.IsLiquidation),
		ForMarketplaces:  strings.TrimSpace(it.ForMarketplaces),
		MainImage:        strings.TrimSpace(it.MainImage),
	}

	for _, p := range it.Parameters {
		payload.Parameters = append(payload.Parameters, catalog.Parameter{
			Name:  strings.TrimSpace(p.Name),
			Value: strings.TrimSpace(p.Value),
		})
	}
	payload.Barcodes = trimNonEmpty(it.Barcodes)
	payload.AdditionalImages = trimNonEmpty(it.AdditionalImages)
	payload.Videos = trimNonEmpty(it.Videos)
	payload.Certificates = trimNonEmpty(it.Certificates)

	return payload
}

func trimNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Decompose streams the XML document, invoking fn once per <item> as soon as
// it is decoded, so consumers can start before the document ends. Returns
// the number of items seen. Malformed XML aborts with an error; a document
// with zero items is a valid terminal case.
func Decompose(r io.Reader, fn func(*catalog.CatalogItemPayload) error) (int, error) {
	decoder := xml.NewDecoder(r)
	count := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("parse feed xml: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "item" {
			continue
		}

		var item feedItem
		if err := decoder.DecodeElement(&item, &start); err != nil {
			return count, fmt.Errorf("parse feed item: %w", err)
		}
		count++
		if err := fn(item.toPayload()); err != nil {
			return count, err
		}
	}
}
