package tstype

// ImportRef names a symbol the generated code needs from another module.
// An empty Path refers to a generated model type; the file assembler decides
// whether that becomes an import or a local declaration.
type ImportRef struct {
	Name    string
	Path    string
	Default bool
	// Values marks a runtime value import; plain type imports leave it false.
	Values bool
}

func (r ImportRef) key() string { return r.Path + "\x00" + r.Name }

// ImportSet is an insertion-ordered set of ImportRef keyed by symbol identity
// (name and path). The zero value is ready to use.
type ImportSet struct {
	refs []ImportRef
	seen map[string]int
}

// Add inserts refs not already present. A ref seen again with Values set
// upgrades the stored entry.
func (s *ImportSet) Add(refs ...ImportRef) {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	for _, r := range refs {
		if r.Name == "" {
			continue
		}
		if i, ok := s.seen[r.key()]; ok {
			if r.Values {
				s.refs[i].Values = true
			}
			continue
		}
		s.seen[r.key()] = len(s.refs)
		s.refs = append(s.refs, r)
	}
}

// Refs returns a copy of the collected refs in insertion order.
func (s *ImportSet) Refs() []ImportRef {
	if len(s.refs) == 0 {
		return nil
	}
	return append([]ImportRef(nil), s.refs...)
}

// Len returns the number of distinct refs.
func (s *ImportSet) Len() int { return len(s.refs) }

// Union merges ref lists without duplicates, keeping first-seen order.
func Union(lists ...[]ImportRef) []ImportRef {
	var set ImportSet
	for _, l := range lists {
		set.Add(l...)
	}
	return set.Refs()
}
