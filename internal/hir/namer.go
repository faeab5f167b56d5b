package hir

import "strconv"

// Namer hands out temporary and label names for one compilation unit.
// Counters only grow, so names are unique within the unit.
type Namer struct {
	temps  int
	labels int
}

// NewNamer returns a namer starting at .t0 and .L0.
func NewNamer() *Namer { return &Namer{} }

// Temp returns a fresh temporary name.
func (n *Namer) Temp() string {
	name := TempPrefix + strconv.Itoa(n.temps)
	n.temps++
	return name
}

// Label returns a fresh label name.
func (n *Namer) Label() string {
	name := LabelPrefix + strconv.Itoa(n.labels)
	n.labels++
	return name
}

// Counts reports how many names of each kind were issued.
func (n *Namer) Counts() (temps, labels int) { return n.temps, n.labels }
