package uihelpers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Breakpoints for the chart grid, in window pixels.
const (
	twoColumnBreakpoint   = 1200
	threeColumnBreakpoint = 1900
	gridGap               = 16
)

// ComputeGridColumns returns how many chart cards are laid out side by side.
func ComputeGridColumns(winW float32) int {
	switch {
	case winW < twoColumnBreakpoint:
		return 1
	case winW < threeColumnBreakpoint:
		return 2
	default:
		return 3
	}
}

// ComputeChartDimensions returns the pixel size of one chart card for the given
// window width and column count. Width never drops below 480; height follows a
// ~2.4:1 aspect ratio clamped to [240,460].
func ComputeChartDimensions(winW float32, cols int) (int, int) {
	if cols < 1 {
		cols = 1
	}
	w := int((winW - float32(gridGap*(cols+1))) / float32(cols))
	if w < 480 {
		w = 480
	}
	h := int(float32(w) * 0.42)
	if h < 240 {
		h = 240
	}
	if h > 460 {
		h = 460
	}
	return w, h
}

// ComputeMiniChartHeight is the height used for the compact placeholder of an
// empty card: half the chart height, clamped between 120 and 230.
func ComputeMiniChartHeight(fullChartHeight int) int {
	h := fullChartHeight / 2
	if h < 120 {
		h = 120
	}
	if h > 230 {
		h = 230
	}
	return h
}

// FormatCounts renders a count map as "total (a 2, b 1)", largest first, ties by name.
// An empty or all-zero map yields "0".
func FormatCounts[K ~string](counts map[K]int) string {
	type kv struct {
		k string
		n int
	}
	var (
		items []kv
		total int
	)
	for k, n := range counts {
		if n <= 0 {
			continue
		}
		items = append(items, kv{string(k), n})
		total += n
	}
	if total == 0 {
		return "0"
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].n != items[j].n {
			return items[i].n > items[j].n
		}
		return items[i].k < items[j].k
	})
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s %d", it.k, it.n)
	}
	return fmt.Sprintf("%d (%s)", total, strings.Join(parts, ", "))
}

// TruncatePath shortens p to about n characters, keeping the base name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
