package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type queryStartKey struct{}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context == nil {
		db.Statement.Context = context.Background()
	}
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
}

// queryElapsed returns the time since markQueryStart ran for this statement, or 0
func queryElapsed(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}

// registerAround hooks before and after every gorm callback chain. after
// receives the SQL verb, or "" for row and raw statements.
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(op string) func(*gorm.DB)) error {
	type hook func(name string, fn func(*gorm.DB)) error
	cb := db.Callback()
	chains := []struct {
		name, op      string
		before, after hook
	}{
		{"create", "INSERT", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", "SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", "UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", "DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", "", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", "", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, c := range chains {
		if err := c.before(prefix+":before_"+c.name, before); err != nil {
			return err
		}
		if err := c.after(prefix+":after_"+c.name, after(c.op)); err != nil {
			return err
		}
	}
	return nil
}
