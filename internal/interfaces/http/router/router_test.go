package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doorsets/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, DefaultBasePath, r.basePath)
	assert.Empty(t, r.entities)

	r = NewRouter(gin.New(), WithBasePath("/internal"))
	assert.Equal(t, "/internal", r.basePath)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewEntity("Ping").
		Get("Get", func(c *gin.Context) { c.String(http.StatusOK, "pong") }))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/Ping/Get")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/Ping/Get").Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	r.Register(NewEntity("Ping").
		Get("Get", func(c *gin.Context) { c.Status(http.StatusOK) }))
	r.Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/Ping/Get").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code, "engine routes are outside the api group")
}

func TestEntity(t *testing.T) {
	engine := gin.New()
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) { order = append(order, name) }
	}

	e := NewEntity("Item").
		Get("Get", mark("get")).
		Post("/Post", mark("post")).
		Put("Put/:id", mark("put")).
		Delete("Delete/:id", mark("guard"), mark("delete"))

	require.Len(t, e.Actions, 4)
	assert.Equal(t, "Post", e.Actions[1].Path, "leading slash is dropped")

	e.Mount(engine.Group("/api"))

	cases := []struct {
		method string
		path   string
		want   []string
	}{
		{http.MethodGet, "/api/Item/Get", []string{"get"}},
		{http.MethodPost, "/api/Item/Post", []string{"post"}},
		{http.MethodPut, "/api/Item/Put/1", []string{"put"}},
		{http.MethodDelete, "/api/Item/Delete/1", []string{"guard", "delete"}},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			order = nil
			serve(engine, tc.method, tc.path)
			assert.Equal(t, tc.want, order)
		})
	}
}

func TestPublicPaths(t *testing.T) {
	assert.Equal(t, []string{"/api/Account/authenticate", "/api/Account/refresh-token"}, PublicPaths(DefaultBasePath))
}

func testHandlers() Handlers {
	return Handlers{
		Account:       &handler.AccountHandler{},
		Item:          &handler.ItemHandler{},
		Category:      &handler.CategoryHandler{},
		Assembly:      &handler.AssemblyHandler{},
		Customer:      &handler.CustomerHandler{},
		Supplier:      &handler.SupplierHandler{},
		PickList:      &handler.PickListHandler{},
		PurchaseOrder: &handler.PurchaseOrderHandler{},
		Dashboard:     &handler.DashboardHandler{},
	}
}

func TestAPIEntities(t *testing.T) {
	engine := gin.New()
	denyAll := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	r := NewRouter(engine)
	RegisterAPI(r, testHandlers(), denyAll)
	r.Setup()

	routes := map[string]bool{}
	for _, ri := range engine.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"POST /api/Account/authenticate",
		"POST /api/Account/refresh-token",
		"GET /api/Account/me",
		"GET /api/Item/GetAll",
		"GET /api/Item/GetById/:id",
		"POST /api/Item/Create",
		"PUT /api/Item/Update/:id",
		"DELETE /api/Item/Delete/:id",
		"POST /api/Item/AdjustStock/:id",
		"GET /api/Item/LowStock",
		"POST /api/Item/Import",
		"GET /api/Category/GetAll",
		"GET /api/Assembly/Expand/:id",
		"GET /api/Customer/Export",
		"GET /api/Supplier/Export",
		"PUT /api/PickList/SetMadeOrder/:id/:lineId",
		"GET /api/PickList/CheckStock/:id",
		"POST /api/PickList/Complete/:id",
		"GET /api/PickList/Print/:id",
		"POST /api/PurchaseOrder/Receive/:id",
		"POST /api/PurchaseOrder/CreateFromPickList/:pickListId",
		"GET /api/Dashboard/Summary",
	} {
		assert.True(t, routes[want], want)
	}

	t.Run("admin guard", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/api/Account/register"},
			{http.MethodDelete, "/api/Item/Delete/1"},
			{http.MethodPost, "/api/Item/AdjustStock/1"},
			{http.MethodPost, "/api/Item/Import"},
			{http.MethodDelete, "/api/Category/Delete/1"},
			{http.MethodDelete, "/api/Assembly/Delete/1"},
			{http.MethodDelete, "/api/Customer/Delete/1"},
			{http.MethodDelete, "/api/Supplier/Delete/1"},
			{http.MethodDelete, "/api/PickList/Delete/1"},
			{http.MethodDelete, "/api/PurchaseOrder/Delete/1"},
		} {
			assert.Equal(t, http.StatusForbidden, serve(engine, tc.method, tc.path).Code, tc.path)
		}
	})

	t.Run("entities", func(t *testing.T) {
		entities := APIEntities(testHandlers(), denyAll)
		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, e.Name)
		}
		require.Len(t, names, 9)
		assert.Contains(t, names, "PurchaseOrder")
	})
}
