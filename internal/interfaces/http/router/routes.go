package router

import (
	"github.com/doorsets/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Public API paths, relative to the base path. Everything else needs a bearer token.
const (
	AuthenticatePath = "/Account/authenticate"
	RefreshTokenPath = "/Account/refresh-token"
)

// PublicPaths returns the unauthenticated API paths under basePath
func PublicPaths(basePath string) []string {
	return []string{basePath + AuthenticatePath, basePath + RefreshTokenPath}
}

// Handlers are the API handlers the route table binds
type Handlers struct {
	Account       *handler.AccountHandler
	Item          *handler.ItemHandler
	Category      *handler.CategoryHandler
	Assembly      *handler.AssemblyHandler
	Customer      *handler.CustomerHandler
	Supplier      *handler.SupplierHandler
	PickList      *handler.PickListHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Dashboard     *handler.DashboardHandler
}

// crud are the actions every entity shares
type crud interface {
	GetAll(*gin.Context)
	GetByID(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func entity(name string, h crud, admin gin.HandlerFunc) *Entity {
	return NewEntity(name).
		Get("GetAll", h.GetAll).
		Get("GetById/:id", h.GetByID).
		Post("Create", h.Create).
		Put("Update/:id", h.Update).
		Delete("Delete/:id", admin, h.Delete)
}

// APIEntities builds the route table of every entity. admin guards the
// admin-only actions.
func APIEntities(h Handlers, admin gin.HandlerFunc) []*Entity {
	account := NewEntity("Account").
		Post("authenticate", h.Account.Authenticate).
		Post("refresh-token", h.Account.RefreshToken).
		Post("logout", h.Account.Logout).
		Get("me", h.Account.Me).
		Post("register", admin, h.Account.Register).
		Post("change-password", h.Account.ChangePassword)

	item := entity("Item", h.Item, admin).
		Post("AdjustStock/:id", admin, h.Item.AdjustStock).
		Get("Movements/:id", h.Item.Movements).
		Get("LowStock", h.Item.LowStock).
		Get("Export", h.Item.Export).
		Post("Import", admin, h.Item.Import)

	category := entity("Category", h.Category, admin)

	assembly := entity("Assembly", h.Assembly, admin).
		Get("Expand/:id", h.Assembly.Expand).
		Get("Export", h.Assembly.Export)

	customer := entity("Customer", h.Customer, admin).
		Get("Export", h.Customer.Export)

	supplier := entity("Supplier", h.Supplier, admin).
		Get("Export", h.Supplier.Export)

	pickList := entity("PickList", h.PickList, admin).
		Post("AddLine/:id", h.PickList.AddLine).
		Post("AddAssembly/:id", h.PickList.AddAssembly).
		Put("UpdateLine/:id/:lineId", h.PickList.UpdateLine).
		Delete("RemoveLine/:id/:lineId", h.PickList.RemoveLine).
		Put("SetMadeOrder/:id/:lineId", h.PickList.SetMadeOrder).
		Post("LinkPurchaseOrder/:id", h.PickList.LinkPurchaseOrder).
		Get("CheckStock/:id", h.PickList.CheckStock).
		Post("StartProduction/:id", h.PickList.StartProduction).
		Post("Complete/:id", h.PickList.Complete).
		Post("Cancel/:id", h.PickList.Cancel).
		Get("Print/:id", h.PickList.Print).
		Get("Export", h.PickList.Export)

	purchaseOrder := entity("PurchaseOrder", h.PurchaseOrder, admin).
		Post("AddLine/:id", h.PurchaseOrder.AddLine).
		Put("UpdateLine/:id/:lineId", h.PurchaseOrder.UpdateLine).
		Delete("RemoveLine/:id/:lineId", h.PurchaseOrder.RemoveLine).
		Post("Place/:id", h.PurchaseOrder.Place).
		Post("Receive/:id", h.PurchaseOrder.Receive).
		Post("Cancel/:id", h.PurchaseOrder.Cancel).
		Post("CreateFromPickList/:pickListId", h.PurchaseOrder.CreateFromPickList).
		Get("Print/:id", h.PurchaseOrder.Print).
		Get("Export", h.PurchaseOrder.Export)

	dashboard := NewEntity("Dashboard").
		Get("Summary", h.Dashboard.Summary)

	return []*Entity{account, item, category, assembly, customer, supplier, pickList, purchaseOrder, dashboard}
}

// RegisterAPI adds every entity of the route table to r
func RegisterAPI(r *Router, h Handlers, admin gin.HandlerFunc) {
	r.Register(APIEntities(h, admin)...)
}
