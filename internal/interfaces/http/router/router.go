// Package router mounts the API route groups under a versioned prefix.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router collects route groups and the middleware shared by all of them
type Router struct {
	engine     *gin.Engine
	version    string
	middleware []gin.HandlerFunc
	groups     []*Group
}

// New creates a Router serving under /api/<version>
func New(engine *gin.Engine, version string) *Router {
	return &Router{engine: engine, version: version}
}

// Use adds middleware run before every API route. Routes registered directly
// on the engine, like /health, are not affected.
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Mount queues groups for Setup
func (r *Router) Mount(groups ...*Group) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Setup registers every mounted group on the engine
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, g := range r.groups {
		g.register(api)
	}
	return api
}

// Group is a set of routes sharing a path prefix and optional middleware
type Group struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewGroup(prefix string, middleware ...gin.HandlerFunc) *Group {
	return &Group{prefix: prefix, middleware: middleware}
}

func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.handle(http.MethodGet, path, handlers)
}

func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.handle(http.MethodPost, path, handlers)
}

func (g *Group) PATCH(path string, handlers ...gin.HandlerFunc) *Group {
	return g.handle(http.MethodPatch, path, handlers)
}

func (g *Group) handle(method, path string, handlers []gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *Group) register(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, rt := range g.routes {
		rg.Handle(rt.method, rt.path, rt.handlers...)
	}
}
