/*
Package booking provides the core engine for reserving shared lab
equipment.

PURPOSE:
  This package contains the domain types and algorithms that decide
  whether a requested set of resources can be granted for a date/time
  window: inventory and ledger models, the free-text resource parser,
  and the availability engine.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource/Inventory: the externally maintained catalog of equipment
    and on-hand quantities, with case-insensitive name lookup
  - ResourceSet: an ordered name -> quantity mapping used for both
    parsed requests and the selection cart
  - Record: a committed, immutable booking in the append-only ledger
  - Request: a fully assembled candidate booking awaiting confirmation

DESIGN PRINCIPLES:
  1. Immutability: ledger records are appended, never updated
  2. Order preservation: requested resources are evaluated in the order
     the caller supplied them
  3. Forgiving matching: resource names resolve case-insensitively and
     whitespace-trimmed, because inventory is maintained by hand

SEE ALSO:
  - availability.go: the conflict engine consuming these types
  - parser.go: free-text to ResourceSet
  - store.go: the external catalog/ledger interfaces
*/
package booking

import (
	"strconv"
	"strings"
)

// NormalizeName canonicalizes a resource name for matching: trimmed and
// lowercased. Display names keep their original spelling.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// RESOURCE & INVENTORY - The equipment catalog
// =============================================================================

// Resource is one catalog entry: a named piece of equipment and the
// total on-hand quantity.
type Resource struct {
	Name     string
	Quantity int
}

// Inventory is an ordered resource catalog with case-insensitive name
// lookup. Immutable once built; a fresh Inventory is fetched per engine
// invocation.
type Inventory struct {
	items []Resource
	index map[string]int
}

// NewInventory builds an Inventory preserving catalog order. A later
// duplicate of an already-present name (after normalization) overwrites
// the quantity but keeps the original position.
func NewInventory(items []Resource) *Inventory {
	inv := &Inventory{index: make(map[string]int, len(items))}
	for _, it := range items {
		norm := NormalizeName(it.Name)
		if norm == "" {
			continue
		}
		if i, ok := inv.index[norm]; ok {
			inv.items[i].Quantity = it.Quantity
			continue
		}
		inv.index[norm] = len(inv.items)
		inv.items = append(inv.items, it)
	}
	return inv
}

// Resources returns the catalog in its stable order.
func (v *Inventory) Resources() []Resource { return v.items }

func (v *Inventory) Len() int { return len(v.items) }

// Lookup resolves a name case-insensitively and whitespace-trimmed.
func (v *Inventory) Lookup(name string) (Resource, bool) {
	i, ok := v.index[NormalizeName(name)]
	if !ok {
		return Resource{}, false
	}
	return v.items[i], true
}

// QuantityOf returns the total quantity for a name, 0 if unknown.
func (v *Inventory) QuantityOf(name string) int {
	r, ok := v.Lookup(name)
	if !ok {
		return 0
	}
	return r.Quantity
}

// =============================================================================
// RESOURCE SET - Ordered name -> quantity mapping
// =============================================================================

// Entry is one (name, quantity) pair of a ResourceSet.
type Entry struct {
	Name     string
	Quantity int
}

// ResourceSet is an ordered name -> quantity mapping. It backs both
// parsed resource requests (overwrite semantics via Set) and the
// selection cart (accumulate semantics via Add). Names keep their
// first-seen position and spelling; matching is normalized.
type ResourceSet struct {
	order []string // normalized names, first-seen order
	names map[string]string
	qty   map[string]int
}

func NewResourceSet() *ResourceSet {
	return &ResourceSet{
		names: make(map[string]string),
		qty:   make(map[string]int),
	}
}

// Set stores the quantity for a name, overwriting any previous value
// (last occurrence wins). The entry keeps its original position.
func (s *ResourceSet) Set(name string, qty int) {
	norm := NormalizeName(name)
	if norm == "" {
		return
	}
	if _, ok := s.qty[norm]; !ok {
		s.order = append(s.order, norm)
		s.names[norm] = strings.TrimSpace(name)
	}
	s.qty[norm] = qty
}

// Add merges a quantity by addition into an entry (cart semantics).
// If the resulting quantity drops to zero or below, the entry is
// removed entirely: present entries always carry quantity >= 1.
func (s *ResourceSet) Add(name string, qty int) {
	norm := NormalizeName(name)
	if norm == "" {
		return
	}
	next := s.qty[norm] + qty
	if next <= 0 {
		s.remove(norm)
		return
	}
	if _, ok := s.qty[norm]; !ok {
		s.order = append(s.order, norm)
		s.names[norm] = strings.TrimSpace(name)
	}
	s.qty[norm] = next
}

// Decrement lowers an entry by one, removing it when the quantity
// would reach zero. Reports whether the entry was removed.
func (s *ResourceSet) Decrement(name string) (removed bool) {
	norm := NormalizeName(name)
	if s.qty[norm] <= 1 {
		s.remove(norm)
		return true
	}
	s.qty[norm]--
	return false
}

// Remove deletes an entry outright regardless of quantity.
func (s *ResourceSet) Remove(name string) {
	s.remove(NormalizeName(name))
}

func (s *ResourceSet) remove(norm string) {
	if _, ok := s.qty[norm]; !ok {
		return
	}
	delete(s.qty, norm)
	delete(s.names, norm)
	for i, n := range s.order {
		if n == norm {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the quantity for a name; absent entries are 0.
func (s *ResourceSet) Get(name string) int {
	return s.qty[NormalizeName(name)]
}

func (s *ResourceSet) Len() int     { return len(s.order) }
func (s *ResourceSet) Empty() bool  { return len(s.order) == 0 }

// Clear removes every entry.
func (s *ResourceSet) Clear() {
	s.order = nil
	s.names = make(map[string]string)
	s.qty = make(map[string]int)
}

// Entries returns the (name, quantity) pairs in first-seen order.
func (s *ResourceSet) Entries() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, norm := range s.order {
		entries = append(entries, Entry{Name: s.names[norm], Quantity: s.qty[norm]})
	}
	return entries
}

// Clone returns an independent copy. Used to freeze the cart into a
// candidate request without aliasing session state.
func (s *ResourceSet) Clone() *ResourceSet {
	c := NewResourceSet()
	for _, e := range s.Entries() {
		c.Set(e.Name, e.Quantity)
	}
	return c
}

// String renders the canonical "name:qty;name:qty" wire form used in
// ledger rows.
func (s *ResourceSet) String() string {
	var b strings.Builder
	for i, e := range s.Entries() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Quantity))
	}
	return b.String()
}

// =============================================================================
// RECORD & REQUEST - Committed and candidate bookings
// =============================================================================

// Record is a committed booking resident in the append-only ledger.
// Never mutated after creation.
type Record struct {
	Date      Date
	Start     TimeOfDay
	End       TimeOfDay
	Resources *ResourceSet
	Employee  string
	Manager   string
}

// Request is the fully assembled candidate booking produced by the
// conversation workflow, frozen before confirmation.
type Request struct {
	Date      Date
	Start     TimeOfDay
	End       TimeOfDay
	Resources *ResourceSet
	Employee  string
	Manager   string
}

// Record converts an accepted request into the immutable ledger form.
func (r Request) Record() Record {
	return Record{
		Date:      r.Date,
		Start:     r.Start,
		End:       r.End,
		Resources: r.Resources.Clone(),
		Employee:  r.Employee,
		Manager:   r.Manager,
	}
}
