package contract

// Role tags a slot in a generated function signature.
type Role int

const (
	RolePath Role = iota + 1
	RoleQuery
	RoleHeader
	RoleBody
	RoleOptions
)

func (r Role) String() string {
	switch r {
	case RolePath:
		return "path"
	case RoleQuery:
		return "query"
	case RoleHeader:
		return "header"
	case RoleBody:
		return "body"
	case RoleOptions:
		return "options"
	}
	return "unknown"
}

// Slot is one argument of a generated function. Optional is the slot's own
// flag and is independent from the optionality of the parameters it groups.
type Slot struct {
	Role     Role
	Name     string
	Type     string
	Optional bool
	// Wrapper, when set, is a generic type applied around Type at render
	// time: Wrapper<Type>.
	Wrapper string
}

// TypeExpr returns the slot type with its wrapper applied.
func (s Slot) TypeExpr() string {
	if s.Wrapper == "" {
		return s.Type
	}
	return s.Wrapper + "<" + s.Type + ">"
}

// Surface is the ordered signature shared by every flavor: path arguments in
// declaration order, then the query object, the header object, the body and
// the trailing options.
type Surface []Slot

// Filter returns the slots whose role is not in exclude, in order.
func (s Surface) Filter(exclude ...Role) Surface {
	var out Surface
next:
	for _, slot := range s {
		for _, r := range exclude {
			if slot.Role == r {
				continue next
			}
		}
		out = append(out, slot)
	}
	return out
}

// Find returns the first slot with role r.
func (s Surface) Find(r Role) (Slot, bool) {
	for _, slot := range s {
		if slot.Role == r {
			return slot, true
		}
	}
	return Slot{}, false
}

// Has reports whether a slot with role r exists.
func (s Surface) Has(r Role) bool {
	_, ok := s.Find(r)
	return ok
}
