package persistence

import (
	"errors"
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// SortFields maps API sort keys to columns
type SortFields map[string]string

// ValidateSortOrder normalizes the direction to ASC or DESC (default)
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField resolves sortField against the whitelist, accepting either
// the API key or the column name, and falls back to defaultColumn
func ValidateSortField(sortField string, allowed SortFields, defaultColumn string) string {
	key := strings.TrimSpace(sortField)
	if key == "" {
		return defaultColumn
	}
	if col, ok := allowed[key]; ok {
		return col
	}
	for _, col := range allowed {
		if col == key {
			return col
		}
	}
	return defaultColumn
}

var baseSortFields = SortFields{
	"id":        "id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func withBase(extra SortFields) SortFields {
	out := make(SortFields, len(baseSortFields)+len(extra))
	for k, v := range baseSortFields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var (
	CategorySortFields = withBase(SortFields{"name": "name"})

	ItemSortFields = withBase(SortFields{
		"code":         "code",
		"name":         "name",
		"quantity":     "quantity",
		"reorderLevel": "reorder_level",
		"unitCost":     "unit_cost",
		"location":     "location",
		"categoryId":   "category_id",
		"supplierId":   "supplier_id",
	})

	AssemblySortFields = withBase(SortFields{"code": "code", "name": "name"})

	PartnerSortFields = withBase(SortFields{
		"name":        "name",
		"contactName": "contact_name",
		"email":       "email",
	})

	PickListSortFields = withBase(SortFields{
		"number":     "number",
		"title":      "title",
		"status":     "status",
		"dueDate":    "due_date",
		"customerId": "customer_id",
	})

	PurchaseOrderSortFields = withBase(SortFields{
		"number":       "number",
		"status":       "status",
		"orderDate":    "order_date",
		"expectedDate": "expected_date",
		"supplierId":   "supplier_id",
	})

	MovementSortFields = SortFields{"id": "id", "createdAt": "created_at", "delta": "delta"}
)

// listQuery counts the filtered rows, then loads one page (all rows when
// PageSize is 0) with the named child collections preloaded in id order
func listQuery[M any](query *gorm.DB, filter shared.Filter, sortFields SortFields, preloads ...string) ([]M, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col := ValidateSortField(filter.OrderBy, sortFields, "id")
	query = query.Order(col + " " + ValidateSortOrder(filter.OrderDir))
	if col != "id" {
		query = query.Order("id DESC")
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	for _, p := range preloads {
		query = query.Preload(p, orderByID)
	}

	var rows []M
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// searchScope matches term case-insensitively against any of columns
func searchScope(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, c := range columns {
			conds[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func deleteByID(db *gorm.DB, model any, id uint) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
