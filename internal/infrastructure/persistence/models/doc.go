// Package models contains GORM persistence models. Domain types stay free of
// ORM tags; each model converts to and from its aggregate with ToDomain and
// FromDomain, and repositories work exclusively with these models.
package models
