package leadview

// Sorter is the table's sort state
type Sorter struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle selects field. A new field starts descending; selecting the current
// field again flips the direction.
func (s Sorter) Toggle(field Field) Sorter {
	if s.Field == field {
		if s.Direction == Desc {
			return Sorter{Field: field, Direction: Asc}
		}
		return Sorter{Field: field, Direction: Desc}
	}
	return Sorter{Field: field, Direction: Desc}
}
