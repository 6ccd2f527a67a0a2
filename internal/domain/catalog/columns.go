package catalog

import "github.com/catalogsync/backend/internal/domain/grid"

var (
	statusOptions     = []string{grid.DropdownAll, "Synced", "Incomplete", "Unreviewed", "Blocked"}
	visibilityOptions = []string{grid.DropdownAll, "Visible", "Hidden"}
	blockedOptions    = []string{grid.DropdownAll, "Blocked", "Unblocked"}
	yesNoOptions      = []string{grid.DropdownAll, "Yes", "No"}
	imageOptions      = []string{string(grid.ImageAll), string(grid.ImageNone), string(grid.ImageAtLeastOne), string(grid.ImageTwoOrMore)}
)

func selectColumn() grid.ColumnDescriptor {
	return grid.ColumnDescriptor{ID: "select", Width: 40, Renderer: grid.RenderSelect}
}

func imageColumn() grid.ColumnDescriptor {
	return grid.ColumnDescriptor{
		ID: "imageUrl", Label: "Image", Width: 100,
		FilterKind: grid.FilterImage, Filterable: true, FilterField: "imageCount",
		Options: imageOptions, Renderer: grid.RenderImage,
	}
}

func textColumn(id, label string, width int) grid.ColumnDescriptor {
	return grid.ColumnDescriptor{
		ID: id, Label: label, Width: width,
		FilterKind: grid.FilterText, Filterable: true, Sortable: true, Resizable: true,
	}
}

// editableColumn is a lockable text column a user may edit
func editableColumn(id, label string, width int) grid.ColumnDescriptor {
	c := textColumn(id, label, width)
	c.Editable = true
	c.Lockable = true
	c.Renderer = grid.RenderEditable
	return c
}

func rangeColumn(id, label string, width int, r grid.Renderer) grid.ColumnDescriptor {
	return grid.ColumnDescriptor{
		ID: id, Label: label, Width: width,
		FilterKind: grid.FilterRange, Filterable: true, Sortable: true, Resizable: true,
		Renderer: r,
	}
}

func dropdownColumn(id, label string, width int, options []string, r grid.Renderer) grid.ColumnDescriptor {
	return grid.ColumnDescriptor{
		ID: id, Label: label, Width: width,
		FilterKind: grid.FilterDropdown, Filterable: true, Sortable: true, Resizable: true,
		Options: options, Renderer: r,
	}
}

func dateColumn(id, label string) grid.ColumnDescriptor {
	return grid.ColumnDescriptor{
		ID: id, Label: label, Width: 120,
		FilterKind: grid.FilterDate, Filterable: true, Sortable: true, Resizable: true,
		Renderer: grid.RenderDate,
	}
}

// CatalogColumns is the column set of the full catalog table
func CatalogColumns() *grid.Registry {
	shipping := rangeColumn("shippingCost", "Shipping ($)", 120, grid.RenderMoney)
	shipping.Editable = true
	shipping.Lockable = true

	return grid.MustRegistry(
		selectColumn(),
		imageColumn(),
		textColumn("sku", "SKU", 120),
		editableColumn("title", "Title", 200),
		editableColumn("description", "Description", 240),
		editableColumn("brand", "Brand", 140),
		editableColumn("vendor", "Vendor", 140),
		editableColumn("product_type", "Product Type", 160),
		editableColumn("tags", "Tags", 140),
		editableColumn("meta_title", "Meta Title", 160),
		editableColumn("meta_description", "Meta Description", 200),
		editableColumn("upc", "UPC", 140),
		shipping,
		rangeColumn("cost", "Cost", 100, grid.RenderMoney),
		rangeColumn("price", "Price", 100, grid.RenderMoney),
		rangeColumn("map", "MAP", 100, grid.RenderMoney),
		rangeColumn("quantity", "Quantity", 100, grid.RenderText),
		rangeColumn("imageCount", "Image Count", 100, grid.RenderText),
		dropdownColumn("blocked", "Blocked", 80, blockedOptions, grid.RenderBool),
		textColumn("distributor", "Distributor", 140),
		textColumn("asin", "ASIN", 140),
		rangeColumn("weight", "Weight (lbs)", 100, grid.RenderText),
		rangeColumn("width", "Width (in)", 100, grid.RenderText),
		rangeColumn("length", "Length (in)", 100, grid.RenderText),
		dropdownColumn("status", "Status", 140, statusOptions, grid.RenderText),
		dropdownColumn("visibility", "Visibility", 120, visibilityOptions, grid.RenderText),
		dateColumn("lastUpdated", "Last Updated"),
		dateColumn("createdAt", "Created Date"),
		textColumn("status_notes", "Status Notes", 300),
	)
}

// SyncedColumns is the column set of the ready-to-sync table
func SyncedColumns() *grid.Registry {
	return grid.MustRegistry(
		selectColumn(),
		imageColumn(),
		textColumn("sku", "SKU", 120),
		editableColumn("title", "Title", 200),
		editableColumn("description", "Description", 240),
		rangeColumn("cost", "COST", 100, grid.RenderMoney),
		rangeColumn("price", "PRICE", 100, grid.RenderMoney),
		rangeColumn("minPrice", "MIN PRICE", 100, grid.RenderMoney),
		rangeColumn("maxPrice", "MAX PRICE", 100, grid.RenderMoney),
		rangeColumn("map", "MAP", 100, grid.RenderMoney),
		rangeColumn("quantity", "Quantity", 100, grid.RenderText),
		editableColumn("brand", "Brand", 140),
		editableColumn("vendor", "Vendor", 140),
		textColumn("distributor", "Distributor", 140),
		editableColumn("upc", "UPC", 140),
		textColumn("asin", "ASIN", 140),
		rangeColumn("weight", "Weight (lbs)", 100, grid.RenderText),
		rangeColumn("width", "Width (in)", 100, grid.RenderText),
		rangeColumn("length", "Length (in)", 100, grid.RenderText),
		rangeColumn("shippingCost", "Shipping ($)", 100, grid.RenderMoney),
		rangeColumn("imageCount", "Image Count", 100, grid.RenderText),
		dropdownColumn("blocked", "Blocked", 80, blockedOptions, grid.RenderBool),
		dropdownColumn("approved_for_shopify", "Approved?", 100, yesNoOptions, grid.RenderBool),
		dropdownColumn("synced_to_shopify", "Synced?", 100, yesNoOptions, grid.RenderYesNo),
		dropdownColumn("status", "Status", 120, statusOptions, grid.RenderText),
		dropdownColumn("visibility", "Visibility", 120, visibilityOptions, grid.RenderText),
		dateColumn("lastUpdated", "Last Updated"),
		dateColumn("createdAt", "Created Date"),
	)
}

// Columns returns the column set of a table
func Columns(scope Scope) *grid.Registry {
	if scope == ScopeSynced {
		return SyncedColumns()
	}
	return CatalogColumns()
}

// TableMode returns how a table pages: the catalog grows by cursor,
// the synced table sorts and paginates what it loaded.
func TableMode(scope Scope) grid.Mode {
	if scope == ScopeSynced {
		return grid.ModeLocal
	}
	return grid.ModeServer
}
