/*
session.go - Per-user selection session

PURPOSE:
  The selection session is the ephemeral state behind the "pick your
  equipment" part of the booking conversation: which catalog page the
  user is on, what is in their cart, and the in-progress quantity pick
  for a single resource. It is created when resource selection begins
  and discarded when the workflow leaves that state.

KEY CONTRACTS:
  - Catalog keys span the ENTIRE catalog on every page render, so a
    key issued while viewing page 0 still resolves after paging away -
    until the next regeneration invalidates the whole generation.
  - The cart key map is versioned independently of the catalog map;
    every cart render regenerates it, so keys from a render that
    predates a cart mutation are stale.
  - Cart entries always carry quantity >= 1; decrementing at 1 removes
    the entry.

CONCURRENCY:
  A session serves exactly one in-flight step at a time; the owning
  conversation serializes access. Sessions of different users share
  nothing, so there is no locking here.
*/
package session

import (
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// =============================================================================
// SESSION - Ephemeral selection state for one user
// =============================================================================

// Session is one user's selection state. Create with New; methods are
// not self-locking.
type Session struct {
	page    int
	cart    *booking.ResourceSet
	catalog *KeyMap
	cartMap *KeyMap
	pending *Pending
}

// Pending is an in-progress add-to-cart quantity pick.
type Pending struct {
	Key      string
	Name     string
	Quantity int
	Max      int // current inventory bound; 0 means not addable
}

func New() *Session {
	return &Session{
		cart:    booking.NewResourceSet(),
		catalog: NewKeyMap("i"),
		cartMap: NewKeyMap("c"),
	}
}

// Cart returns the live cart. Callers must not retain it across steps;
// use Clone to freeze it into a candidate request.
func (s *Session) Cart() *booking.ResourceSet { return s.cart }

// Page returns the catalog page of the most recent render.
func (s *Session) Page() int { return s.page }

// =============================================================================
// CATALOG PAGINATION
// =============================================================================

// CatalogItem is one visible catalog entry with its issued key.
type CatalogItem struct {
	Key      string
	Name     string
	Quantity int
}

// PageView is the result of rendering one catalog page.
type PageView struct {
	Items      []CatalogItem
	Page       int
	TotalPages int
}

// RenderPage renders the requested catalog page at the given page size.
// The page index is clamped into [0, totalPages-1]. The key map is
// regenerated across the ENTIRE catalog, so keys for off-page items
// remain resolvable until the next render.
func (s *Session) RenderPage(inv *booking.Inventory, page, pageSize int) PageView {
	resources := inv.Resources()
	totalPages := (len(resources) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	s.page = page

	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.Name
	}
	s.catalog.Regenerate(names)

	start := page * pageSize
	end := start + pageSize
	if end > len(resources) {
		end = len(resources)
	}

	view := PageView{Page: page, TotalPages: totalPages}
	for i := start; i < end; i++ {
		view.Items = append(view.Items, CatalogItem{
			Key:      s.catalog.KeyFor(i),
			Name:     resources[i].Name,
			Quantity: resources[i].Quantity,
		})
	}
	return view
}

// =============================================================================
// TRANSIENT QUANTITY PICK
// =============================================================================

// BeginSelect starts a quantity pick for the catalog entry behind key.
// The pick starts at quantity 1 and is bounded by the current inventory
// quantity; a Max of 0 means the resource is not addable and the caller
// must handle that explicitly. A stale key returns ErrStaleKey.
func (s *Session) BeginSelect(key string, inv *booking.Inventory) (*Pending, error) {
	name, err := s.catalog.Resolve(key)
	if err != nil {
		return nil, err
	}
	s.pending = &Pending{
		Key:      key,
		Name:     name,
		Quantity: 1,
		Max:      inv.QuantityOf(name),
	}
	return s.pending, nil
}

// AdjustQuantity applies a delta to the pending pick for key, clamped
// to [1, Max]: out-of-range results leave the quantity unchanged (a
// no-op, not an error). A missing or mismatched pending pick is a
// stale reference.
func (s *Session) AdjustQuantity(key string, delta int) (*Pending, error) {
	if s.pending == nil || s.pending.Key != key {
		return nil, ErrStaleKey
	}
	next := s.pending.Quantity + delta
	if next >= 1 && next <= s.pending.Max {
		s.pending.Quantity = next
	}
	return s.pending, nil
}

// CommitToCart merges the pending pick into the cart by addition and
// clears the pick. Returns what was added.
func (s *Session) CommitToCart(key string) (Pending, error) {
	if s.pending == nil || s.pending.Key != key {
		return Pending{}, ErrStaleKey
	}
	done := *s.pending
	s.cart.Add(done.Name, done.Quantity)
	s.pending = nil
	return done, nil
}

// CancelSelect drops the pending pick, if any.
func (s *Session) CancelSelect() { s.pending = nil }

// PendingPick returns the current pick, nil when none is in progress.
func (s *Session) PendingPick() *Pending { return s.pending }

// =============================================================================
// CART
// =============================================================================

// CartItem is one cart line with its issued key.
type CartItem struct {
	Key      string
	Name     string
	Quantity int
}

// RenderCart enumerates cart entries in stable order and issues fresh
// keys, invalidating any key from a prior render.
func (s *Session) RenderCart() []CartItem {
	entries := s.cart.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	s.cartMap.Regenerate(names)

	items := make([]CartItem, len(entries))
	for i, e := range entries {
		items[i] = CartItem{Key: s.cartMap.KeyFor(i), Name: e.Name, Quantity: e.Quantity}
	}
	return items
}

// DecrementOne lowers the cart entry behind key by one, removing it
// when the quantity would reach zero. Callers must re-render the cart
// afterwards so outstanding keys are invalidated.
func (s *Session) DecrementOne(key string) (name string, removed bool, err error) {
	name, err = s.cartMap.Resolve(key)
	if err != nil {
		return "", false, err
	}
	return name, s.cart.Decrement(name), nil
}

// RemoveAll deletes the cart entry behind key outright.
func (s *Session) RemoveAll(key string) (string, error) {
	name, err := s.cartMap.Resolve(key)
	if err != nil {
		return "", err
	}
	s.cart.Remove(name)
	return name, nil
}

// ClearCart empties the cart.
func (s *Session) ClearCart() { s.cart.Clear() }
