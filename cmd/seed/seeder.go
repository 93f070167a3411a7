package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	productionapp "github.com/doorsets/backend/internal/application/production"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNotEmpty is returned when items already exist
var ErrNotEmpty = errors.New("database already contains items")

type partKind struct {
	category string
	prefix   string
	unit     string
	minCost  float64
	maxCost  float64
}

// one kind per door set component; assemblies take one item of each
var partKinds = []partKind{
	{category: "Leaves", prefix: "LEF", unit: "pcs", minCost: 60, maxCost: 240},
	{category: "Frames", prefix: "FRM", unit: "set", minCost: 35, maxCost: 120},
	{category: "Hinges", prefix: "HNG", unit: "pcs", minCost: 2, maxCost: 18},
	{category: "Locks", prefix: "LCK", unit: "pcs", minCost: 12, maxCost: 90},
	{category: "Handles", prefix: "HDL", unit: "pair", minCost: 8, maxCost: 65},
	{category: "Seals", prefix: "SEL", unit: "m", minCost: 1, maxCost: 6},
}

// componentQty is how many of each kind one door set uses
var componentQty = map[string]int{"LEF": 1, "FRM": 1, "HNG": 3, "LCK": 1, "HDL": 1, "SEL": 5}

// Counts sizes a seed run
type Counts struct {
	Suppliers  int
	Customers  int
	Items      int
	Assemblies int
}

// Result reports what a seed run created
type Result struct {
	Categories int
	Suppliers  int
	Customers  int
	Items      int
	Assemblies int
	PickList   string
}

// Services are the application services the seeder writes through
type Services struct {
	Categories *catalogapp.CategoryService
	Items      *catalogapp.ItemService
	Assemblies *catalogapp.AssemblyService
	Customers  *partnerapp.CustomerService
	Suppliers  *partnerapp.SupplierService
	PickLists  *productionapp.PickListService
}

type seeder struct {
	svc    Services
	faker  *gofakeit.Faker
	logger *zap.Logger
}

func newSeeder(svc Services, seed uint64, logger *zap.Logger) *seeder {
	return &seeder{svc: svc, faker: gofakeit.New(seed), logger: logger}
}

// run creates demo data. Items are spread evenly over the part kinds.
func (s *seeder) run(ctx context.Context, n Counts) (*Result, error) {
	existing, err := s.svc.Items.GetAll(ctx, catalogapp.ItemListQuery{})
	if err != nil {
		return nil, err
	}
	if existing.TotalCount > 0 {
		return nil, ErrNotEmpty
	}

	res := &Result{}
	categoryIDs := make(map[string]uint, len(partKinds))
	for _, k := range partKinds {
		c, err := s.svc.Categories.Create(ctx, catalogapp.CategoryRequest{
			Name:        k.category,
			Description: fmt.Sprintf("Door set %s", strings.ToLower(k.category)),
		})
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", k.category, err)
		}
		categoryIDs[k.prefix] = c.ID
		res.Categories++
	}
	setCategory, err := s.svc.Categories.Create(ctx, catalogapp.CategoryRequest{Name: "Door Sets", Description: "Finished door set assemblies"})
	if err != nil {
		return nil, fmt.Errorf("category Door Sets: %w", err)
	}
	res.Categories++

	supplierIDs := make([]uint, 0, n.Suppliers)
	for i := 0; i < n.Suppliers; i++ {
		sup, err := s.svc.Suppliers.Create(ctx, partnerapp.SupplierRequest{
			ContactRequest: s.contact(fmt.Sprintf("%s Supplies", s.faker.Company())),
			Website:        s.faker.URL(),
			LeadTimeDays:   s.faker.Number(2, 21),
		})
		if err != nil {
			return nil, fmt.Errorf("supplier: %w", err)
		}
		supplierIDs = append(supplierIDs, sup.ID)
		res.Suppliers++
	}

	customerIDs := make([]uint, 0, n.Customers)
	for i := 0; i < n.Customers; i++ {
		cust, err := s.svc.Customers.Create(ctx, partnerapp.CustomerRequest{
			ContactRequest: s.contact(s.faker.Company()),
		})
		if err != nil {
			return nil, fmt.Errorf("customer: %w", err)
		}
		customerIDs = append(customerIDs, cust.ID)
		res.Customers++
	}

	itemsByKind := make(map[string][]uint, len(partKinds))
	for i := 0; i < n.Items; i++ {
		k := partKinds[i%len(partKinds)]
		seq := len(itemsByKind[k.prefix]) + 1
		catID := categoryIDs[k.prefix]
		req := catalogapp.ItemRequest{
			Code:         fmt.Sprintf("%s-%03d", k.prefix, seq),
			Name:         fmt.Sprintf("%s %s", s.faker.Color(), strings.TrimSuffix(k.category, "s")),
			Description:  s.faker.ProductFeature(),
			CategoryID:   &catID,
			Unit:         k.unit,
			UnitCost:     decimal.NewFromFloat(s.faker.Float64Range(k.minCost, k.maxCost)).Round(2),
			Quantity:     s.faker.Number(0, 60),
			ReorderLevel: s.faker.Number(2, 15),
			Location:     fmt.Sprintf("Bay %d / Shelf %c", s.faker.Number(1, 12), 'A'+rune(s.faker.Number(0, 5))),
		}
		if len(supplierIDs) > 0 {
			sid := supplierIDs[s.faker.Number(0, len(supplierIDs)-1)]
			req.SupplierID = &sid
		}
		item, err := s.svc.Items.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", req.Code, err)
		}
		itemsByKind[k.prefix] = append(itemsByKind[k.prefix], item.ID)
		res.Items++
	}

	assemblyIDs := make([]uint, 0, n.Assemblies)
	for i := 0; i < n.Assemblies; i++ {
		var components []catalogapp.ComponentRequest
		for _, k := range partKinds {
			ids := itemsByKind[k.prefix]
			if len(ids) == 0 {
				continue
			}
			components = append(components, catalogapp.ComponentRequest{
				ItemID:   ids[s.faker.Number(0, len(ids)-1)],
				Quantity: componentQty[k.prefix],
			})
		}
		if len(components) == 0 {
			break
		}
		a, err := s.svc.Assemblies.Create(ctx, catalogapp.AssemblyRequest{
			Code:        fmt.Sprintf("DS-%03d", i+1),
			Name:        fmt.Sprintf("%s door set", s.faker.BuzzWord()),
			Description: s.faker.LoremIpsumSentence(8),
			CategoryID:  &setCategory.ID,
			Components:  components,
		})
		if err != nil {
			return nil, fmt.Errorf("assembly: %w", err)
		}
		assemblyIDs = append(assemblyIDs, a.ID)
		res.Assemblies++
	}

	if len(customerIDs) > 0 && len(assemblyIDs) > 0 {
		req := productionapp.PickListRequest{
			CustomerID:     customerIDs[0],
			OrderReference: fmt.Sprintf("SO-%d", s.faker.Number(1000, 9999)),
			Title:          fmt.Sprintf("%s refurbishment", s.faker.City()),
		}
		for i, id := range assemblyIDs {
			if i == 2 {
				break
			}
			req.Assemblies = append(req.Assemblies, productionapp.AddAssemblyRequest{AssemblyID: id, Units: s.faker.Number(1, 6)})
		}
		pl, err := s.svc.PickLists.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("pick list: %w", err)
		}
		res.PickList = pl.Number
	}

	s.logger.Info("Seed data created",
		zap.Int("categories", res.Categories),
		zap.Int("suppliers", res.Suppliers),
		zap.Int("customers", res.Customers),
		zap.Int("items", res.Items),
		zap.Int("assemblies", res.Assemblies),
		zap.String("pick_list", res.PickList),
	)
	return res, nil
}

func (s *seeder) contact(name string) partnerapp.ContactRequest {
	return partnerapp.ContactRequest{
		Name:        name,
		ContactName: s.faker.Name(),
		Email:       s.faker.Email(),
		Phone:       s.faker.Phone(),
		Address:     s.faker.Address().Address,
	}
}
