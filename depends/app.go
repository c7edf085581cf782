// Package depends provides chi applications with overridable dependencies.
package depends

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bool64/ctxd"
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/usecase/status"
)

// ErrNotApp is returned when a handler passed to Patch is not an *App.
var ErrNotApp = status.Wrap(errors.New("not an app"), status.InvalidArgument)

// ErrUnknownDependency is returned when neither provider nor override is available for a key.
var ErrUnknownDependency = status.Wrap(errors.New("unknown dependency"), status.NotFound)

// Provider resolves dependency value for a request.
type Provider func(r *http.Request) (interface{}, error)

// Overrides maps dependency keys to replacement providers.
type Overrides map[interface{}]Provider

// Value creates a provider that always returns v.
func Value(v interface{}) Provider {
	return func(_ *http.Request) (interface{}, error) {
		return v, nil
	}
}

// App is a chi router with dependency providers and test overrides.
//
// Handlers registered on App resolve dependencies with Resolve, overrides take
// precedence over providers. Apps mounted with Mount are patched together with parent.
type App struct {
	chi.Router

	Logger ctxd.Logger

	mu        sync.RWMutex
	providers map[interface{}]Provider
	overrides Overrides
	subApps   []*App
}

var _ chi.Router = &App{}

// NewApp creates application.
func NewApp(options ...func(a *App)) *App {
	a := &App{
		Router:    chi.NewRouter(),
		providers: make(map[interface{}]Provider),
		overrides: make(Overrides),
	}

	for _, option := range options {
		option(a)
	}

	return a
}

// WithLogger sets logger of override changes.
func WithLogger(l ctxd.Logger) func(a *App) {
	return func(a *App) {
		a.Logger = l
	}
}

// Provide registers dependency provider.
func (a *App) Provide(key interface{}, p Provider) {
	if p == nil {
		panic(fmt.Sprintf("nil provider for %v", key))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.providers[key] = p
}

// Resolve returns dependency value for request.
func (a *App) Resolve(r *http.Request, key interface{}) (interface{}, error) {
	a.mu.RLock()
	p, found := a.overrides[key]

	if !found {
		p, found = a.providers[key]
	}
	a.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDependency, key)
	}

	return p(r)
}

// Overrides returns a copy of active overrides.
func (a *App) Overrides() Overrides {
	a.mu.RLock()
	defer a.mu.RUnlock()

	o := make(Overrides, len(a.overrides))
	for k, p := range a.overrides {
		o[k] = p
	}

	return o
}

// Mount attaches another http.Handler along "./pattern/*", *App handlers are kept as sub apps.
func (a *App) Mount(pattern string, h http.Handler) {
	if sub, ok := h.(*App); ok {
		a.mu.Lock()
		a.subApps = append(a.subApps, sub)
		a.mu.Unlock()
	}

	a.Router.Mount(pattern, h)
}

// SubApps returns apps mounted directly to this app.
func (a *App) SubApps() []*App {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]*App(nil), a.subApps...)
}

func (a *App) patch(overrides Overrides, remove bool) {
	a.mu.Lock()

	switch {
	case overrides == nil:
		a.overrides = make(Overrides)
	case remove:
		for k := range overrides {
			delete(a.overrides, k)
		}
	default:
		for k, p := range overrides {
			a.overrides[k] = p
		}
	}

	n := len(a.overrides)
	a.mu.Unlock()

	if a.Logger != nil {
		a.Logger.Debug(context.Background(), "dependency overrides patched",
			"keys", len(overrides), "remove", remove, "active", n)
	}
}
