/*
Package session holds per-user ephemeral selection state: catalog
pagination, the cart, the transient quantity pick, and the short-key
indirection that keeps action payloads small.

PURPOSE:
  Action signals travel over a channel with a small fixed size budget,
  so buttons cannot embed full resource names. Instead each render
  issues short keys ("i4.2", "c0.7") that map back to names. Keys are
  valid only until the owning map is regenerated; a stale key must be
  recognized as stale, never resolved to a wrong name.

KEY CONCEPTS IN THIS FILE (keymap.go):
  - KeyMap: a versioned short-key -> name table. Every regeneration
    bumps a generation counter that is embedded in the issued keys, so
    a key minted against generation 3 can never collide with an entry
    of generation 4 - resolution of an outdated key deterministically
    fails with ErrStaleKey.

SEE ALSO:
  - session.go: the selection session owning one KeyMap for the
    catalog and an independently versioned one for the cart
*/
package session

import (
	"errors"
	"fmt"
)

// ErrStaleKey is returned when a short key predates the latest
// regeneration of its map. This is a first-class recoverable path:
// callers regenerate the map and re-present fresh controls.
var ErrStaleKey = errors.New("stale selection key")

// KeyMap is a versioned short-key -> name lookup table.
type KeyMap struct {
	prefix string
	gen    int
	keys   map[string]string
}

// NewKeyMap creates an empty map issuing keys with the given prefix
// ("i" for catalog entries, "c" for cart lines).
func NewKeyMap(prefix string) *KeyMap {
	return &KeyMap{prefix: prefix, keys: map[string]string{}}
}

// Regenerate replaces the table with fresh keys for the given names
// and invalidates every previously issued key.
func (m *KeyMap) Regenerate(names []string) {
	m.gen++
	m.keys = make(map[string]string, len(names))
	for i, name := range names {
		m.keys[m.keyFor(i)] = name
	}
}

// KeyFor returns the current-generation key for an index. Only valid
// for indexes covered by the latest Regenerate call.
func (m *KeyMap) KeyFor(index int) string {
	return m.keyFor(index)
}

func (m *KeyMap) keyFor(index int) string {
	return fmt.Sprintf("%s%d.%d", m.prefix, index, m.gen)
}

// Resolve maps a key back to its name. Keys from any earlier
// generation (or never issued at all) fail with ErrStaleKey.
func (m *KeyMap) Resolve(key string) (string, error) {
	name, ok := m.keys[key]
	if !ok {
		return "", ErrStaleKey
	}
	return name, nil
}

// Generation reports how many times the map has been regenerated.
func (m *KeyMap) Generation() int { return m.gen }
