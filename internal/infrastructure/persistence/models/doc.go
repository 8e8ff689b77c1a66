// Package models holds the GORM row types the repositories read and
// write. Domain aggregates stay free of ORM tags; each model here maps
// one table and converts to and from its domain counterpart.
//
// Files follow the bounded contexts:
//   - base.go: shared columns (id, timestamps) embedded by every model
//   - expedition.go: expeditions, expedition items, consumptions
//   - vault.go: pirates, the alias registry, encrypted notes
//   - reconciliation.go: payments recorded during reconciliation
package models
