package catalog

import "strings"

// EntityRef is a vendor reference to a dictionary entity (brand, model).
type EntityRef struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// ModelRef is a vendor reference to a product model.
type ModelRef struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	GroupCode string `json:"group_code"`
}

// Parameter is one raw attribute pair from the vendor feed.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogItemPayload is the unit of work for the catalog-import lane.
// It is constructed once per feed row and consumed exactly once by the
// product importer.
type CatalogItemPayload struct {
	ExternalID   string `json:"external_id"`
	Code         string `json:"code"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	URL          string `json:"url"`
	Barcode      string `json:"barcode"`
	CategoryPath string `json:"category_path"`

	Brand EntityRef `json:"brand_ref"`
	Model ModelRef  `json:"model_ref"`

	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Composition      string `json:"composition"`

	IsNew           string `json:"is_new"`
	IsMarked        string `json:"is_marked"`
	IsLiquidation   string `json:"is_liquidation"`
	ForMarketplaces string `json:"for_marketplaces"`

	Parameters       []Parameter `json:"parameters"`
	Barcodes         []string    `json:"barcodes"`
	AdditionalImages []string    `json:"additional_images"`
	Videos           []string    `json:"videos"`
	Certificates     []string    `json:"certificates"`

	MainImage string `json:"main_image"`
}

// feedTrue is the literal the vendor feed uses for boolean flags.
const feedTrue = "Да"

// FlagFromFeed maps the vendor's boolean convention to a bool: the literal
// "Да" means true, anything else false.
func FlagFromFeed(value string) bool {
	return strings.TrimSpace(value) == feedTrue
}
