package meshing

// PlaneMask is one plane of face cells, row-major with W cells per row.
type PlaneMask struct {
	W, H  int
	Cells []FaceKey
}

// Rect is a merged run of identical face cells, in plane cell units.
type Rect struct {
	U, V, W, H int
	Key        FaceKey
}

// merger holds the visited set between planes so the scan never writes the
// mask itself.
type merger struct {
	visited []bool
}

// MergeRects covers every present cell of m with maximal rectangles of
// identical keys. The scan is row-major: each rectangle grows along U first,
// then along V while the whole row matches. m is not modified, so merging
// the same mask twice gives the same rectangles.
func MergeRects(m PlaneMask) []Rect {
	var mg merger
	return mg.merge(m, nil)
}

func (mg *merger) merge(m PlaneMask, out []Rect) []Rect {
	n := m.W * m.H
	if cap(mg.visited) < n {
		mg.visited = make([]bool, n)
	}
	visited := mg.visited[:n]
	for i := range visited {
		visited[i] = false
	}

	i := 0
	for i < n {
		key := m.Cells[i]
		if key == 0 || visited[i] {
			i++
			continue
		}
		u0 := i % m.W
		v0 := i / m.W
		// compute width
		width := 1
		for u1 := u0 + 1; u1 < m.W; u1++ {
			j := v0*m.W + u1
			if m.Cells[j] != key || visited[j] {
				break
			}
			width++
		}
		// compute height
		height := 1
	outer:
		for v1 := v0 + 1; v1 < m.H; v1++ {
			for u1 := u0; u1 < u0+width; u1++ {
				j := v1*m.W + u1
				if m.Cells[j] != key || visited[j] {
					break outer
				}
			}
			height++
		}
		for vv := v0; vv < v0+height; vv++ {
			for uu := u0; uu < u0+width; uu++ {
				visited[vv*m.W+uu] = true
			}
		}
		out = append(out, Rect{U: u0, V: v0, W: width, H: height, Key: key})
		i += width
	}
	return out
}

// ExpandRects paints rectangles back into a w×h mask. It is the inverse of
// MergeRects and is used to check merges.
func ExpandRects(w, h int, rects []Rect) PlaneMask {
	m := PlaneMask{W: w, H: h, Cells: make([]FaceKey, w*h)}
	for _, r := range rects {
		for v := r.V; v < r.V+r.H && v < h; v++ {
			for u := r.U; u < r.U+r.W && u < w; u++ {
				m.Cells[v*w+u] = r.Key
			}
		}
	}
	return m
}
