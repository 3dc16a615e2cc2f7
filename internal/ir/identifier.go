package ir

import "sync/atomic"

// Identifier is an opaque handle for one abstract token. Identifiers compare
// by identity: two identifiers are the same token exactly when their values
// are equal. They carry no structural content.
//
// The zero value NoIdentifier means "no reference" and is never allocated.
type Identifier int64

// NoIdentifier is the absent reference. An Attribute with Ref ==
// NoIdentifier refers to the token its predicate is currently attached to.
const NoIdentifier Identifier = 0

// Allocator hands out fresh identifiers. Every call site that introduces a
// new token takes an explicit *Allocator; there is no hidden global counter.
// Uniqueness holds per allocator, which is all translation needs since a
// plan is always built against a single allocator.
//
// The counter is atomic, so one allocator may be shared by concurrent
// translations.
type Allocator struct {
	next atomic.Int64
}

// NewAllocator returns an allocator whose first identifier is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Fresh allocates a new, never-before-seen identifier.
func (a *Allocator) Fresh() Identifier {
	return Identifier(a.next.Add(1))
}

// IdentifierSet is a membership set of identifiers.
//
// It is used for reachability and containment checks only. Emitting output
// from map iteration order would make translation nondeterministic, so any
// code producing user-visible text must walk identifiers in declaration or
// arrangement order and use the set purely for lookups.
type IdentifierSet map[Identifier]struct{}

// NewIdentifierSet builds a set from the given identifiers, ignoring
// NoIdentifier.
func NewIdentifierSet(ids ...Identifier) IdentifierSet {
	s := make(IdentifierSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set. NoIdentifier is ignored.
func (s IdentifierSet) Add(id Identifier) {
	if id != NoIdentifier {
		s[id] = struct{}{}
	}
}

// Has reports whether id is a member.
func (s IdentifierSet) Has(id Identifier) bool {
	_, ok := s[id]
	return ok
}

// AddAll inserts every member of other.
func (s IdentifierSet) AddAll(other IdentifierSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// SubsetOf reports whether every member of s is also in other.
func (s IdentifierSet) SubsetOf(other IdentifierSet) bool {
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
