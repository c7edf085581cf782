package depends

import (
	"fmt"
	"net/http"
)

// Patch applies overrides to apps and all their mounted sub apps.
//
// Nil overrides clear all overrides, remove deletes overrides with given keys,
// otherwise overrides are merged into existing ones.
// Apps are validated before any change, so a failed Patch leaves them intact.
func Patch(overrides Overrides, remove bool, apps ...http.Handler) error {
	targets := make([]*App, 0, len(apps))

	for _, h := range apps {
		a, ok := h.(*App)
		if !ok || a == nil {
			return fmt.Errorf("%w: expected *depends.App, given %T", ErrNotApp, h)
		}

		targets = append(targets, a)
	}

	visited := make(map[*App]bool)

	for _, a := range targets {
		walk(a, visited, func(a *App) {
			a.patch(overrides, remove)
		})
	}

	return nil
}

// Clear removes all overrides from apps and their sub apps.
func Clear(apps ...http.Handler) error {
	return Patch(nil, false, apps...)
}

// Remove deletes overrides with given keys from apps and their sub apps.
func Remove(keys []interface{}, apps ...http.Handler) error {
	overrides := make(Overrides, len(keys))
	for _, k := range keys {
		overrides[k] = nil
	}

	return Patch(overrides, true, apps...)
}

func walk(a *App, visited map[*App]bool, f func(a *App)) {
	if visited[a] {
		return
	}

	visited[a] = true

	f(a)

	for _, sub := range a.SubApps() {
		walk(sub, visited, f)
	}
}
