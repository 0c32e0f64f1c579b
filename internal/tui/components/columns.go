package components

// ColumnSpec sizes one column for CalculateColumnWidths.
type ColumnSpec struct {
	Fixed    int     // exact width; wins over Weight
	Weight   float64 // share of the spare width
	MinWidth int     // floor for weighted columns
	Priority int     // lower is hidden first
}

// CalculateColumnWidths fits columns into available cells, separator cells
// apart, with one cell of row padding on each side. When they do not fit,
// columns are hidden lowest priority first (the rightmost on ties) and get
// width 0. The last column standing is never hidden.
func CalculateColumnWidths(specs []ColumnSpec, available, separator int) []int {
	visible := make([]bool, len(specs))
	for i := range visible {
		visible[i] = true
	}

	spare := func() (int, float64) {
		need, weight, n := 2, 0.0, 0
		for i, s := range specs {
			if !visible[i] {
				continue
			}
			n++
			if s.Fixed > 0 {
				need += s.Fixed
			} else {
				need += s.MinWidth
				weight += s.Weight
			}
		}
		if n > 1 {
			need += (n - 1) * separator
		}
		return available - need, weight
	}

	left, weight := spare()
	for left < 0 {
		drop := lowestPriority(specs, visible)
		if drop < 0 {
			break
		}
		visible[drop] = false
		left, weight = spare()
	}
	left = max(left, 0)

	widths := make([]int, len(specs))
	for i, s := range specs {
		switch {
		case !visible[i]:
		case s.Fixed > 0:
			widths[i] = s.Fixed
		case weight > 0:
			widths[i] = s.MinWidth + int(float64(left)*s.Weight/weight)
		default:
			widths[i] = s.MinWidth
		}
	}
	return widths
}

func lowestPriority(specs []ColumnSpec, visible []bool) int {
	idx, count := -1, 0
	for i, s := range specs {
		if !visible[i] {
			continue
		}
		count++
		if idx < 0 || s.Priority <= specs[idx].Priority {
			idx = i
		}
	}
	if count <= 1 {
		return -1
	}
	return idx
}
