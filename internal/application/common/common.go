// Package common holds the plumbing every application service shares:
// publishing events after a write, caching list queries, and list query
// binding.
package common

import (
	"context"
	"strings"
	"time"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// DefaultListTTL is used when no cache TTL is configured
const DefaultListTTL = 30 * time.Second

// Support bundles what services need besides their repositories
type Support struct {
	Events   shared.EventPublisher
	Cache    cache.QueryCache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewSupport fills in no-op defaults for anything left nil
func NewSupport(events shared.EventPublisher, c cache.QueryCache, ttl time.Duration, logger *zap.Logger) Support {
	if c == nil {
		c = cache.NoopQueryCache{}
	}
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Support{Events: events, Cache: c, CacheTTL: ttl, Logger: logger}
}

// Publish sends events. Failures are logged; the write they describe has
// already been committed.
func (s Support) Publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.Events == nil || len(events) == 0 {
		return
	}
	if err := s.Events.Publish(ctx, events...); err != nil {
		s.Logger.Error("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

// Changed publishes an entity lifecycle event followed by any aggregate events
func (s Support) Changed(ctx context.Context, aggType string, id uint, action string, extra ...shared.DomainEvent) {
	events := make([]shared.DomainEvent, 0, len(extra)+1)
	events = append(events, shared.NewEntityChangedEvent(aggType, id, action))
	events = append(events, extra...)
	s.Publish(ctx, events...)
}

// CachedList serves a GetAll page from the query cache, loading it on a miss
func CachedList[T any](ctx context.Context, s Support, entity string, filter shared.Filter, load func() (shared.Paginated[T], error)) (shared.Paginated[T], error) {
	return cache.GetOrLoad(ctx, s.Cache, cache.ListKey(entity, filter), s.CacheTTL, s.Logger, load)
}

// ListQuery is the paging, sorting and search part of every GetAll request
type ListQuery struct {
	Page     int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" json:"pageSize" binding:"omitempty,min=1,max=100"`
	SortBy   string `form:"sortBy" json:"sortBy" binding:"omitempty,max=50"`
	SortDir  string `form:"sortDir" json:"sortDir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search   string `form:"search" json:"search" binding:"omitempty,max=200"`
}

// Filter converts the query into a normalized domain filter
func (q ListQuery) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	if q.SortBy != "" {
		f.OrderBy = q.SortBy
	}
	if q.SortDir != "" {
		f.OrderDir = strings.ToLower(q.SortDir)
	}
	f.Search = strings.TrimSpace(q.Search)
	return f.Normalize()
}

// Unpaged returns a copy of the filter that loads every matching row, used by exports
func Unpaged(f shared.Filter) shared.Filter {
	f.Page = 1
	f.PageSize = 0
	return f
}

// Conflict returns an ALREADY_EXISTS error with message
func Conflict(message string) error {
	return shared.NewDomainError(shared.ErrAlreadyExists.Code, message)
}

// InUse returns an IN_USE error naming what still references the entity
func InUse(message string) error {
	return shared.NewDomainError(shared.ErrInUse.Code, message)
}
