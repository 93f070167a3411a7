// Command seed fills an empty database with demo workshop data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/application/common"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	productionapp "github.com/doorsets/backend/internal/application/production"
	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	var (
		n    Counts
		seed uint64
	)
	flag.IntVar(&n.Suppliers, "suppliers", 5, "Number of suppliers")
	flag.IntVar(&n.Customers, "customers", 10, "Number of customers")
	flag.IntVar(&n.Items, "items", 60, "Number of items, spread over the part categories")
	flag.IntVar(&n.Assemblies, "assemblies", 8, "Number of door set assemblies")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := newSeeder(newServices(db.DB, log), seed, log).run(ctx, n); err != nil {
		if errors.Is(err, ErrNotEmpty) {
			log.Warn("Nothing seeded", zap.Error(err))
			return
		}
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

// newServices wires the services without events or caching
func newServices(db *gorm.DB, log *zap.Logger) Services {
	support := common.NewSupport(nil, nil, 0, log)
	items := persistence.NewGormItemRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	assemblies := persistence.NewGormAssemblyRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	suppliers := persistence.NewGormSupplierRepository(db)
	pickLists := persistence.NewGormPickListRepository(db)
	orders := persistence.NewGormPurchaseOrderRepository(db)

	return Services{
		Categories: catalogapp.NewCategoryService(categories, support),
		Items:      catalogapp.NewItemService(items, items, categories, suppliers, support),
		Assemblies: catalogapp.NewAssemblyService(assemblies, items, categories, support),
		Customers:  partnerapp.NewCustomerService(customers, support),
		Suppliers:  partnerapp.NewSupplierService(suppliers, support),
		PickLists: productionapp.NewPickListService(pickLists, customers, items, assemblies, orders,
			persistence.NewGormTransactionScope(db), nil, support),
	}
}
