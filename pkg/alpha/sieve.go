package alpha

// Sieve removes connected regions smaller than size pixels by merging each
// into its largest neighbouring region, which takes over the small region's
// pixels and value. Regions are visited in label (raster scan) order. The
// input mask is not modified.
func Sieve[T Sample](m *Mask[T], size int, conn Connectivity) *Mask[T] {
	out := m.Clone()
	if size <= 1 || len(m.Pix) == 0 {
		return out
	}

	lab := labelRegions(m, conn, nil)
	if lab.Count <= 1 {
		return out
	}

	n := lab.Count
	parent := make([]int32, n+1)
	sizes := make([]int, n+1)
	values := make([]T, n+1)
	for l := 1; l <= n; l++ {
		parent[l] = int32(l)
		sizes[l] = lab.Sizes[l-1]
	}
	for i, l := range lab.Labels {
		values[l] = m.Pix[i]
	}

	adj := regionAdjacency(lab, conn)

	find := func(l int32) int32 {
		for parent[l] != l {
			parent[l] = parent[parent[l]]
			l = parent[l]
		}
		return l
	}

	for l := int32(1); int(l) <= n; l++ {
		if find(l) != l || sizes[l] >= size {
			continue
		}
		var best int32
		bestSize := -1
		for nb := range adj[l] {
			r := find(nb)
			if r == l {
				continue
			}
			if sizes[r] > bestSize || (sizes[r] == bestSize && r < best) {
				best, bestSize = r, sizes[r]
			}
		}
		if best == 0 {
			continue
		}
		parent[l] = best
		sizes[best] += sizes[l]
		if adj[best] == nil {
			adj[best] = map[int32]struct{}{}
		}
		for nb := range adj[l] {
			adj[best][nb] = struct{}{}
		}
		adj[l] = nil
	}

	for i, l := range lab.Labels {
		out.Pix[i] = values[find(l)]
	}
	return out
}

// regionAdjacency collects, for every label, the set of labels touching it.
func regionAdjacency(lab *Labeling, conn Connectivity) []map[int32]struct{} {
	adj := make([]map[int32]struct{}, lab.Count+1)
	link := func(a, b int32) {
		if adj[a] == nil {
			adj[a] = map[int32]struct{}{}
		}
		adj[a][b] = struct{}{}
	}

	w, h := lab.Cols, lab.Rows
	dx, dy := conn.offsets()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := lab.Labels[y*w+x]
			for d := range dx {
				nx, ny := x+dx[d], y+dy[d]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				b := lab.Labels[ny*w+nx]
				if a != b {
					link(a, b)
				}
			}
		}
	}
	return adj
}
