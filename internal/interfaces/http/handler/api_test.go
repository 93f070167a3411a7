package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/application/common"
	identityapp "github.com/doorsets/backend/internal/application/identity"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	productionapp "github.com/doorsets/backend/internal/application/production"
	purchasingapp "github.com/doorsets/backend/internal/application/purchasing"
	"github.com/doorsets/backend/internal/application/reporting"
	"github.com/doorsets/backend/internal/domain/identity"
	"github.com/doorsets/backend/internal/infrastructure/auth"
	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/doorsets/backend/internal/infrastructure/persistence"
	"github.com/doorsets/backend/internal/infrastructure/printing"
	"github.com/doorsets/backend/internal/interfaces/http/handler"
	"github.com/doorsets/backend/internal/interfaces/http/middleware"
	"github.com/doorsets/backend/internal/interfaces/http/router"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminPassword = "AdminPass123"
	staffPassword = "StaffPass123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// api is the whole /api tree on an in-memory database
type api struct {
	engine *gin.Engine
	auth   *identityapp.AuthService
	admin  string
	staff  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	identity.BcryptCost = bcrypt.MinCost
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	bus, qc := testutil.NewCachingBus(t)
	support := common.NewSupport(bus, qc, time.Minute, nil)

	categories := persistence.NewGormCategoryRepository(db)
	items := persistence.NewGormItemRepository(db)
	assemblies := persistence.NewGormAssemblyRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	suppliers := persistence.NewGormSupplierRepository(db)
	pickLists := persistence.NewGormPickListRepository(db)
	orders := persistence.NewGormPurchaseOrderRepository(db)
	users := persistence.NewGormUserRepository(db)
	scope := persistence.NewGormTransactionScope(db)
	printer := printing.NewDocumentService(nil, nil, nil, printing.DocumentConfig{CompanyName: "DoorSets"}, nil)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "doorsets-test",
		MaxRefreshCount:        5,
	})
	authService := identityapp.NewAuthService(users, jwtService, auth.NewInMemoryTokenBlacklist(), identityapp.DefaultAuthServiceConfig(), nil)
	dashboard := reporting.NewDashboardService(items, pickLists, orders, suppliers)

	h := router.Handlers{
		Account:       handler.NewAccountHandler(authService),
		Item:          handler.NewItemHandler(catalogapp.NewItemService(items, items, categories, suppliers, support), dashboard),
		Category:      handler.NewCategoryHandler(catalogapp.NewCategoryService(categories, support)),
		Assembly:      handler.NewAssemblyHandler(catalogapp.NewAssemblyService(assemblies, items, categories, support)),
		Customer:      handler.NewCustomerHandler(partnerapp.NewCustomerService(customers, support)),
		Supplier:      handler.NewSupplierHandler(partnerapp.NewSupplierService(suppliers, support)),
		PickList:      handler.NewPickListHandler(productionapp.NewPickListService(pickLists, customers, items, assemblies, orders, scope, printer, support)),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchasingapp.NewPurchaseOrderService(orders, suppliers, items, pickLists, scope, printer, support)),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine).Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		Validator: authService,
		SkipPaths: router.PublicPaths(router.DefaultBasePath),
	}))
	router.RegisterAPI(r, h, middleware.RequireAdmin())
	r.Setup()

	a := &api{engine: engine, auth: authService}

	ctx := context.Background()
	created, err := authService.Bootstrap(ctx, identityapp.BootstrapAdmin{Username: "admin", Password: adminPassword})
	require.NoError(t, err)
	require.True(t, created)
	a.admin = a.login(t, "admin", adminPassword)

	_, err = authService.Register(ctx, identityapp.RegisterRequest{Username: "staff", Password: staffPassword, Role: "staff"})
	require.NoError(t, err)
	a.staff = a.login(t, "staff", staffPassword)
	return a
}

func (a *api) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, err := a.auth.Login(context.Background(), identityapp.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	return resp.AccessToken
}

// call sends a JSON request as the staff user
func (a *api) call(t *testing.T, method, path string, body any) (int, testutil.Envelope) {
	t.Helper()
	return a.callAs(t, a.staff, method, path, body)
}

func (a *api) callAs(t *testing.T, token, method, path string, body any) (int, testutil.Envelope) {
	t.Helper()
	w := testutil.Do(t, a.engine, testutil.Request{Method: method, Path: "/api" + path, Token: token, Body: body})
	return w.Code, testutil.DecodeEnvelope(t, w)
}

// mustCall expects a success envelope and decodes its data into out
func (a *api) mustCall(t *testing.T, method, path string, body, out any) {
	t.Helper()
	code, env := a.call(t, method, path, body)
	require.True(t, env.Succeeded, "%s %s: %d %v", method, path, code, env.Messages)
	if out != nil {
		env.Into(t, out)
	}
}

func (a *api) createItem(t *testing.T, code string, qty int, supplierID *uint) catalogapp.ItemResponse {
	t.Helper()
	var item catalogapp.ItemResponse
	a.mustCall(t, http.MethodPost, "/Item/Create", map[string]any{
		"code":         code,
		"name":         "Item " + code,
		"unitCost":     "4.25",
		"quantity":     qty,
		"reorderLevel": 2,
		"supplierId":   supplierID,
	}, &item)
	return item
}

func (a *api) createCustomer(t *testing.T, name string) partnerapp.CustomerResponse {
	t.Helper()
	var c partnerapp.CustomerResponse
	a.mustCall(t, http.MethodPost, "/Customer/Create", map[string]any{"name": name}, &c)
	return c
}

func (a *api) createSupplier(t *testing.T, name string) partnerapp.SupplierResponse {
	t.Helper()
	var s partnerapp.SupplierResponse
	a.mustCall(t, http.MethodPost, "/Supplier/Create", map[string]any{"name": name, "leadTimeDays": 5}, &s)
	return s
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func csvOf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}
