// contour_geometry.go - closed contour extraction from an edge magnitude map

package main

import "math"

// extractClosedContours binarizes the edge map at threshold and traces
// closed boundaries using Moore-neighbor border following, returning each
// boundary as an ordered, non-decimated point list - every traced point
// is kept, no simplification is applied here.
func extractClosedContours(edges []float32, w, h int, threshold float32) [][]point2 {
	if w == 0 || h == 0 {
		return nil
	}

	visited := make([]bool, w*h)
	var contours [][]point2

	isEdge := func(x, y int) bool {
		if x < 0 || x >= w || y < 0 || y >= h {
			return false
		}
		return edges[y*w+x] >= threshold
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !isEdge(x, y) {
				continue
			}
			// Only start tracing at a boundary pixel: one whose left
			// neighbor is not an edge pixel (standard border-following
			// start condition), so interior edge pixels don't spawn
			// redundant traces.
			if isEdge(x-1, y) {
				continue
			}
			c := traceBoundary(isEdge, visited, w, h, x, y)
			if len(c) >= 8 {
				contours = append(contours, c)
			}
		}
	}
	return contours
}

// neighborOffsets walks the 8-connected Moore neighborhood clockwise
// starting from due west.
var neighborOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func traceBoundary(isEdge func(x, y int) bool, visited []bool, w, h, startX, startY int) []point2 {
	var out []point2

	x, y := startX, startY
	backtrackDir := 0 // direction we arrived from, search starts just past it

	for steps := 0; steps < w*h*4; steps++ {
		idx := y*w + x
		if !visited[idx] {
			visited[idx] = true
			out = append(out, point2{x: float32(x), y: float32(y)})
		}

		found := false
		for i := 0; i < 8; i++ {
			dir := (backtrackDir + i) % 8
			nx := x + neighborOffsets[dir][0]
			ny := y + neighborOffsets[dir][1]
			if isEdge(nx, ny) {
				x, y = nx, ny
				backtrackDir = (dir + 5) % 8 // look-back direction for the next step
				found = true
				break
			}
		}
		if !found {
			break
		}
		if x == startX && y == startY {
			break
		}
	}
	return out
}

func perimeter(c []point2) float32 {
	if len(c) < 2 {
		return 0
	}
	var total float32
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		dx, dy := a.x-b.x, a.y-b.y
		total += float32(math.Sqrt(float64(dx*dx + dy*dy)))
	}
	return total
}

func centroid(c []point2) (float32, float32) {
	if len(c) == 0 {
		return 0, 0
	}
	var sx, sy float32
	for _, p := range c {
		sx += p.x
		sy += p.y
	}
	n := float32(len(c))
	return sx / n, sy / n
}
