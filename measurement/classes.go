package measurement

import "fmt"

// Class names one segmentation label.
type Class struct {
	// The integer index used in label tensors.
	Index int
	// The human-readable label.
	Name string
}

// ClassSet ties an identifier to the full list of labels of a dataset.
type ClassSet struct {
	// Class set identifier.
	ID string
	// Classes ordered by index.
	Classes []Class
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// NewClassSet builds a class set and its name index.
//
// Arguments:
//   - id: Identifier of the set.
//   - classes: The classes; Index must equal the position in the slice.
//
// Returns:
//   - The class set.
//   - error if an index does not match its position or a name repeats.
func NewClassSet(id string, classes ...Class) (*ClassSet, error) {
	set := &ClassSet{
		ID:        id,
		Classes:   classes,
		nameToIdx: make(map[string]int, len(classes)),
	}
	for pos, c := range classes {
		if c.Index != pos {
			return nil, fmt.Errorf("class %q has index %d at position %d", c.Name, c.Index, pos)
		}
		if _, dup := set.nameToIdx[c.Name]; dup {
			return nil, fmt.Errorf("class name %q repeated in set %q", c.Name, id)
		}
		set.nameToIdx[c.Name] = c.Index
	}
	return set, nil
}

// MustClassSet is NewClassSet that panics on error, for package-level sets.
func MustClassSet(id string, classes ...Class) *ClassSet {
	set, err := NewClassSet(id, classes...)
	if err != nil {
		panic(err)
	}
	return set
}

// WeedCropClasses is the background/weed/crop labelling the foreground
// metric is defined for.
var WeedCropClasses = MustClassSet("weed-crop",
	Class{Index: 0, Name: "background"},
	Class{Index: 1, Name: "weed"},
	Class{Index: 2, Name: "crop"},
)

// Len returns the number of classes in the set.
func (s *ClassSet) Len() int {
	return len(s.Classes)
}

// LookupName returns the class name for an index.
func (s *ClassSet) LookupName(idx int) (string, error) {
	if idx < 0 || idx >= len(s.Classes) {
		return "", fmt.Errorf("index %d out of range for set %q", idx, s.ID)
	}
	return s.Classes[idx].Name, nil
}

// LookupIndex returns the class index for a name.
func (s *ClassSet) LookupIndex(name string) (int, error) {
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, fmt.Errorf("class %q not in set %q", name, s.ID)
	}
	return idx, nil
}

// NameOr returns the class name for idx, or fallback if the index is unknown.
func (s *ClassSet) NameOr(idx int, fallback string) string {
	if s == nil || idx < 0 || idx >= len(s.Classes) {
		return fallback
	}
	return s.Classes[idx].Name
}
