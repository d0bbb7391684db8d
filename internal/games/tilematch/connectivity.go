package tilematch

// adjacent reports whether two cells share an edge.
func adjacent(a, b Pos) bool {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// IsConnected reports whether cells form a single region under 4-directional
// adjacency. It walks breadth-first from the first cell over the candidate
// set and succeeds iff every cell is reached. An empty set is connected.
func IsConnected(cells []Pos) bool {
	if len(cells) <= 1 {
		return true
	}

	visited := make([]bool, len(cells))
	visited[0] = true
	queue := []int{0}
	reached := 1

	for len(queue) > 0 {
		cur := cells[queue[0]]
		queue = queue[1:]

		for i, c := range cells {
			if visited[i] || !adjacent(cur, c) {
				continue
			}
			visited[i] = true
			reached++
			queue = append(queue, i)
		}
	}

	return reached == len(cells)
}
