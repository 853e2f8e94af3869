// Package plcmpecho provides Echo framework integration for plcmp components.
//
// Mount the component routes onto an Echo instance or group:
//
//	e := echo.New()
//	reg := plcmpecho.Mount(e, plcmpecho.WithKey(key))
//	reg.MustDefine(button.Type)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	reg := plcmpecho.MountGroup(g, plcmpecho.WithBase("/app"))
//	reg.MustDefine(button.Type)
package plcmpecho

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/plcmp"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key  []byte
	path string
	base string
}

// WithKey sets the state token key for the registry.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the URL path prefix for component routes.
// Defaults to plcmp.DefaultPrefix.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithBase sets the path the group is mounted under, so that URLs rendered
// into components point at the group's routes.
func WithBase(base string) Option {
	return func(o *options) {
		o.base = strings.TrimSuffix(base, "/")
	}
}

// Mount creates a registry and mounts the component handler on an Echo instance.
//
//	e := echo.New()
//	reg := plcmpecho.Mount(e)
//	reg.MustDefine(button.Type)
func Mount(e *echo.Echo, opts ...Option) *plcmp.Registry {
	reg, path := newRegistry(opts)
	e.Any(path+"*", handler(reg))
	return reg
}

// MountGroup creates a registry and mounts the component handler on an Echo group.
// This allows components to share middleware with the group (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	reg := plcmpecho.MountGroup(g, plcmpecho.WithBase("/app"))
func MountGroup(g *echo.Group, opts ...Option) *plcmp.Registry {
	reg, path := newRegistry(opts)
	g.Any(path+"*", handler(reg))
	return reg
}

// handler serves the registry routes. The request path is rebuilt from the
// route wildcard so the registry sees its own prefix regardless of where
// the route is mounted.
func handler(reg *plcmp.Registry) echo.HandlerFunc {
	h := reg.Handler()
	return func(c echo.Context) error {
		r := c.Request()
		u := *r.URL
		u.Path = reg.Prefix() + c.Param("*")
		r2 := r.Clone(r.Context())
		r2.URL = &u
		h.ServeHTTP(c.Response(), r2)
		return nil
	}
}

func newRegistry(opts []Option) (*plcmp.Registry, string) {
	o := &options{path: plcmp.DefaultPrefix}
	for _, opt := range opts {
		opt(o)
	}
	if !strings.HasSuffix(o.path, "/") {
		o.path += "/"
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("plcmpecho: failed to generate random key: %v", err))
		}
	}

	reg := plcmp.NewRegistry(key)
	reg.SetPrefix(o.base + o.path)
	plcmp.SetDefault(reg)

	return reg, o.path
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return plcmpecho.Render(c, inst.Render())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
