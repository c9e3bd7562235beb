package roi

import "fmt"

// Set holds one ordered collection per role. It owns the add/remove
// lifecycle; gating functions only read the collections.
//
// A Set is not safe for concurrent use.
type Set struct {
	Plus  []Region
	Minus []Region
	Group []Region
}

// Add appends regions to the collection of their role.
func (s *Set) Add(regions ...Region) error {
	for _, r := range regions {
		c, err := s.collection(r.Role)
		if err != nil {
			return err
		}
		*c = append(*c, r)
	}
	return nil
}

// RemoveLast drops the most recently added region of role and returns it.
// ok is false when the collection is empty.
func (s *Set) RemoveLast(role Role) (r Region, ok bool) {
	c, err := s.collection(role)
	if err != nil || len(*c) == 0 {
		return Region{}, false
	}
	r = (*c)[len(*c)-1]
	*c = (*c)[:len(*c)-1]
	return r, true
}

// Clear empties the collection of role.
func (s *Set) Clear(role Role) {
	if c, err := s.collection(role); err == nil {
		*c = nil
	}
}

// ClearAll empties every collection.
func (s *Set) ClearAll() {
	for _, role := range Roles {
		s.Clear(role)
	}
}

// Len returns the size of the collection of role.
func (s *Set) Len(role Role) int {
	return len(s.Collection(role))
}

// Collection returns the regions of role in insertion order. The slice is
// shared with the set.
func (s *Set) Collection(role Role) []Region {
	c, err := s.collection(role)
	if err != nil {
		return nil
	}
	return *c
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	return &Set{
		Plus:  append([]Region(nil), s.Plus...),
		Minus: append([]Region(nil), s.Minus...),
		Group: append([]Region(nil), s.Group...),
	}
}

func (s *Set) collection(role Role) (*[]Region, error) {
	switch role {
	case Plus:
		return &s.Plus, nil
	case Minus:
		return &s.Minus, nil
	case Group:
		return &s.Group, nil
	}
	return nil, fmt.Errorf("%w: unknown role %d", ErrInvalidRegion, int(role))
}
