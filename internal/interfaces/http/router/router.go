// Package router binds the API handlers to the /{Entity}/{Action} scheme.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultBasePath prefixes every API route
const DefaultBasePath = "/api"

// Action is one endpoint of an entity. Path is relative to the entity, e.g.
// "GetById/:id".
type Action struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Entity is the route table of one API entity, mounted at /{Name}
type Entity struct {
	Name    string
	Actions []Action
}

// NewEntity starts an empty route table
func NewEntity(name string) *Entity {
	return &Entity{Name: name}
}

// On adds an action. Handlers run in order, so guards go first.
func (e *Entity) On(method, path string, handlers ...gin.HandlerFunc) *Entity {
	e.Actions = append(e.Actions, Action{
		Method:   method,
		Path:     strings.TrimPrefix(path, "/"),
		Handlers: handlers,
	})
	return e
}

func (e *Entity) Get(path string, handlers ...gin.HandlerFunc) *Entity {
	return e.On(http.MethodGet, path, handlers...)
}

func (e *Entity) Post(path string, handlers ...gin.HandlerFunc) *Entity {
	return e.On(http.MethodPost, path, handlers...)
}

func (e *Entity) Put(path string, handlers ...gin.HandlerFunc) *Entity {
	return e.On(http.MethodPut, path, handlers...)
}

func (e *Entity) Delete(path string, handlers ...gin.HandlerFunc) *Entity {
	return e.On(http.MethodDelete, path, handlers...)
}

// Mount registers every action under rg
func (e *Entity) Mount(rg *gin.RouterGroup) {
	g := rg.Group("/" + e.Name)
	for _, a := range e.Actions {
		g.Handle(a.Method, "/"+a.Path, a.Handlers...)
	}
}

// Router mounts entities under the base path. Its middleware wraps the API
// routes only; engine-level routes such as /health stay outside.
type Router struct {
	engine     *gin.Engine
	basePath   string
	middleware []gin.HandlerFunc
	entities   []*Entity
}

// Option configures a Router
type Option func(*Router)

// WithBasePath replaces the /api prefix
func WithBasePath(path string) Option {
	return func(r *Router) {
		r.basePath = path
	}
}

// NewRouter creates a router on engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, basePath: DefaultBasePath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds API middleware, run after the engine's own
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register queues entities for Setup
func (r *Router) Register(entities ...*Entity) *Router {
	r.entities = append(r.entities, entities...)
	return r
}

// Setup mounts the queued entities on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.basePath, r.middleware...)
	for _, e := range r.entities {
		e.Mount(api)
	}
}
