package views

var palettes = map[string][]string{
	"tableau10": {
		"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	},
	"kelly10": {
		"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
		"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	},
	"kelly25": {
		"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4", "#46f0f0",
		"#f032e6", "#bcf60c", "#fabebe", "#008080", "#e6beff", "#9a6324", "#fffac8",
		"#800000", "#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080", "#ffffff",
		"#000000", "#c0c0c0", "#ff4500", "#00ced1",
	},
}

// paletteColor returns color i of the named palette, or "" so the renderer
// falls back to its theme colors.
func paletteColor(name string, i int) string {
	p := palettes[name]
	if len(p) == 0 {
		return ""
	}
	return p[i%len(p)]
}
