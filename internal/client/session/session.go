// Package session holds the client side login state: a token and the user
// record it belongs to, persisted through a pluggable Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/credisphere/credisphere/internal/client/apiclient"
)

// State of a Context.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Navigator moves the client between landing routes.
type Navigator interface {
	Push(route string)
	Replace(route string)
}

// Routes are the landing routes of each state.
type Routes struct {
	Authenticated string
	Anonymous     string
}

// DefaultRoutes returns the stock landing routes.
func DefaultRoutes() Routes {
	return Routes{Authenticated: "/dashboard", Anonymous: "/login"}
}

var errEmptyToken = errors.New("session: token is required")

// Context is the session of one client. It reads the Store once, in New.
type Context struct {
	mu     sync.RWMutex
	store  Store
	nav    Navigator
	routes Routes
	snap   Snapshot
}

// New builds a Context from whatever store holds. A load failure leaves
// the Context anonymous and is returned alongside it.
func New(ctx context.Context, store Store, nav Navigator, routes Routes) (*Context, error) {
	if nav == nil {
		nav = &History{}
	}
	c := &Context{store: store, nav: nav, routes: routes}
	snap, err := store.Load(ctx)
	if err != nil {
		return c, fmt.Errorf("session: load: %w", err)
	}
	c.snap = snap
	return c, nil
}

// Login persists token and user and lands on the authenticated route.
func (c *Context) Login(ctx context.Context, token string, user apiclient.User) error {
	if token == "" {
		return errEmptyToken
	}
	snap := Snapshot{Token: token, User: user}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	c.snap = snap
	c.nav.Push(c.routes.Authenticated)
	return nil
}

// Logout clears the stored session and replaces history with the anonymous
// route, so going back cannot reach an authenticated view.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	c.snap = Snapshot{}
	c.nav.Replace(c.routes.Anonymous)
	return nil
}

// Invalidate logs out when err shows the server no longer accepts the
// token. It reports whether it did.
func (c *Context) Invalidate(ctx context.Context, err error) (bool, error) {
	if !apiclient.IsUnauthorized(err) || c.State() != Authenticated {
		return false, nil
	}
	return true, c.Logout(ctx)
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.empty() {
		return Anonymous
	}
	return Authenticated
}

func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Token
}

// User returns the signed in user; ok is false when anonymous.
func (c *Context) User() (user apiclient.User, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.User, !c.snap.empty()
}

// Can reports whether the user of sess holds perm according to roles. A
// nil or anonymous session never can.
func Can(sess *Context, roles map[string][]string, perm string) bool {
	if sess == nil {
		return false
	}
	user, ok := sess.User()
	if !ok {
		return false
	}
	return slices.Contains(roles[user.Role], perm)
}

// History is a Navigator that records the route stack.
type History struct {
	mu      sync.Mutex
	entries []string
}

func (h *History) Push(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, route)
}

// Replace drops every entry and leaves route as the only one.
func (h *History) Replace(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []string{route}
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries)
}

// Current returns the top of the stack or "".
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}
