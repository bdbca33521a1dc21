package switcher

// Catalog maps input display names to device input ids and back.
//
// It is built once per connection from a single enumeration pass. Duplicate
// display names are not rejected: a later input overwrites an earlier one
// with the same name. A nil *Catalog behaves as an empty catalog.
type Catalog struct {
	byName map[string]InputID
	byID   map[InputID]string
	order  []Input
}

// NewCatalog builds a catalog from an enumeration of device inputs.
func NewCatalog(inputs []Input) *Catalog {
	c := &Catalog{
		byName: make(map[string]InputID, len(inputs)),
		byID:   make(map[InputID]string, len(inputs)),
	}

	// Last write wins.
	for _, in := range inputs {
		c.byName[in.Name] = in.ID
	}

	// Reverse lookup keeps the first name in enumeration order that still
	// maps to the id, and order keeps one entry per surviving name.
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if c.byName[in.Name] != in.ID || seen[in.Name] {
			continue
		}
		seen[in.Name] = true
		c.order = append(c.order, in)
		if _, ok := c.byID[in.ID]; !ok {
			c.byID[in.ID] = in.Name
		}
	}
	return c
}

// Lookup resolves a display name. A miss is reported through ok, not an error.
func (c *Catalog) Lookup(name string) (id InputID, ok bool) {
	if c == nil {
		return 0, false
	}
	id, ok = c.byName[name]
	return id, ok
}

// Name resolves an input id to its display name.
func (c *Catalog) Name(id InputID) (name string, ok bool) {
	if c == nil {
		return "", false
	}
	name, ok = c.byID[id]
	return name, ok
}

// Len returns the number of distinct names in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Inputs returns a copy of the catalog entries in enumeration order.
func (c *Catalog) Inputs() []Input {
	if c == nil {
		return []Input{}
	}
	out := make([]Input, len(c.order))
	copy(out, c.order)
	return out
}
