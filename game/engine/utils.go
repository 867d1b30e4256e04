package engine

// HasTile reports whether any cell holds exactly value.
func HasTile(g Grid, value int) bool {
	for _, row := range g {
		for _, v := range row {
			if v == value {
				return true
			}
		}
	}
	return false
}

// MaxTile returns the largest tile on the grid, or 0 for an empty grid.
func MaxTile(g Grid) int {
	max := 0
	for _, row := range g {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// CountEmpty counts the empty cells on the grid.
func CountEmpty(g Grid) int {
	count := 0
	for _, row := range g {
		for _, v := range row {
			if v == 0 {
				count++
			}
		}
	}
	return count
}

// SumTiles adds up every tile on the grid.
func SumTiles(g Grid) int {
	sum := 0
	for _, row := range g {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}
