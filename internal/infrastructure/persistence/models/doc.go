// Package models contains the GORM persistence models of the shop.
//
// Domain entities stay free of ORM tags; every model here owns its table
// mapping and converts to and from its domain type with ToDomain and
// <Name>ModelFromDomain. Unique indexes declared in the tags mirror the
// SQL migrations so that AutoMigrate (sqlite, tests) and migrate (postgres)
// enforce the same constraints.
package models
