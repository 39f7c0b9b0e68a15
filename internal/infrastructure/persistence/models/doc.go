// Package models holds the GORM table mappings for the billing schema.
// Domain entities stay free of ORM tags; each model here carries the
// column annotations and a mapper pair (FromDomain/ToDomain) so
// repositories translate at the persistence boundary.
//
// base.go has the shared ID and timestamp embeds, identity.go maps
// account holders, billing.go maps customers and their debit logs.
package models
