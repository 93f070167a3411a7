package docs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/doorsets/backend/docs"
	"github.com/doorsets/backend/internal/interfaces/http/handler"
	"github.com/doorsets/backend/internal/interfaces/http/router"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDoc(t *testing.T) *openapi3.T {
	t.Helper()

	raw := docs.SwaggerInfo.ReadDoc()
	var v2 openapi2.T
	require.NoError(t, json.Unmarshal([]byte(raw), &v2), "rendered document is not valid JSON")

	v3, err := openapi2conv.ToV3(&v2)
	require.NoError(t, err)
	return v3
}

func TestSwaggerDocumentIsValid(t *testing.T) {
	doc := loadDoc(t)
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, "DoorSets Admin API", doc.Info.Title)
	require.NotEmpty(t, doc.Servers)
	assert.True(t, strings.HasSuffix(doc.Servers[0].URL, "/api"), doc.Servers[0].URL)

	scheme, ok := doc.Components.SecuritySchemes["BearerAuth"]
	require.True(t, ok)
	assert.Equal(t, "Authorization", scheme.Value.Name)
}

var ginParam = regexp.MustCompile(`:(\w+)`)

func TestEveryRouteIsDocumented(t *testing.T) {
	gin.SetMode(gin.TestMode)
	doc := loadDoc(t)

	engine := gin.New()
	r := router.NewRouter(engine, router.WithBasePath(""))
	router.RegisterAPI(r, router.Handlers{
		Account:       &handler.AccountHandler{},
		Item:          &handler.ItemHandler{},
		Category:      &handler.CategoryHandler{},
		Assembly:      &handler.AssemblyHandler{},
		Customer:      &handler.CustomerHandler{},
		Supplier:      &handler.SupplierHandler{},
		PickList:      &handler.PickListHandler{},
		PurchaseOrder: &handler.PurchaseOrderHandler{},
		Dashboard:     &handler.DashboardHandler{},
	}, func(c *gin.Context) { c.Next() })
	r.Setup()

	routes := engine.Routes()
	require.NotEmpty(t, routes)
	for _, ri := range routes {
		path := ginParam.ReplaceAllString(ri.Path, "{$1}")
		item := doc.Paths.Find(path)
		if !assert.NotNil(t, item, "undocumented path %s", path) {
			continue
		}
		assert.NotNil(t, item.GetOperation(ri.Method), "undocumented operation %s %s", ri.Method, path)
	}

	t.Run("public operations carry no security", func(t *testing.T) {
		for _, p := range router.PublicPaths("") {
			op := doc.Paths.Find(p).GetOperation(http.MethodPost)
			require.NotNil(t, op, p)
			assert.Nil(t, op.Security, p)
		}
	})
}
