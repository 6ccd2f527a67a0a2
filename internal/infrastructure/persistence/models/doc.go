// Package models contains the GORM models of the product tables.
//
// Models stay separate from the catalog domain types so the domain keeps
// no ORM tags. ProductModel converts with ToDomain and FromDomain;
// ProductColumns whitelists the grid fields a query may filter or write,
// mapped to their column names.
package models
