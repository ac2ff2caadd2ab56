package uihelpers

import (
	"strings"
	"testing"
)

func TestComputeGridColumns(t *testing.T) {
	cases := []struct {
		w    float32
		want int
	}{
		{400, 1},
		{1199, 1},
		{1200, 2},
		{1899, 2},
		{1900, 3},
		{3000, 3},
	}
	for _, c := range cases {
		if got := ComputeGridColumns(c.w); got != c.want {
			t.Fatalf("width %v => %d columns want %d", c.w, got, c.want)
		}
	}
}

func TestComputeChartDimensions(t *testing.T) {
	w, h := ComputeChartDimensions(300, 1)
	if w != 480 || h != 240 {
		t.Fatalf("narrow window => %dx%d want 480x240", w, h)
	}
	w, h = ComputeChartDimensions(1132, 1)
	if w != 1100 || h != 460 {
		t.Fatalf("single column => %dx%d want 1100x460", w, h)
	}
	w, _ = ComputeChartDimensions(1448, 2)
	if w != 700 {
		t.Fatalf("two columns => width %d want 700", w)
	}
	w0, _ := ComputeChartDimensions(1448, 0)
	w1, _ := ComputeChartDimensions(1448, 1)
	if w0 != w1 {
		t.Fatalf("zero columns should behave as one: %d vs %d", w0, w1)
	}
	for _, in := range []float32{0, 900, 1600, 2400} {
		for cols := 1; cols <= 3; cols++ {
			_, h := ComputeChartDimensions(in, cols)
			if h < 240 || h > 460 {
				t.Fatalf("height clamp violated for %v/%d => %d", in, cols, h)
			}
		}
	}
}

func TestComputeMiniChartHeight(t *testing.T) {
	cases := []struct{ in, want int }{
		{100, 120},
		{240, 120},
		{400, 200},
		{900, 230},
	}
	for _, c := range cases {
		if got := ComputeMiniChartHeight(c.in); got != c.want {
			t.Fatalf("input %d => %d want %d", c.in, got, c.want)
		}
	}
}

type kind string

func TestFormatCounts(t *testing.T) {
	if got := FormatCounts(map[kind]int{}); got != "0" {
		t.Fatalf("empty => %q", got)
	}
	if got := FormatCounts(map[kind]int{"server": 0}); got != "0" {
		t.Fatalf("zero counts => %q", got)
	}
	got := FormatCounts(map[kind]int{"shape": 1, "server": 3, "panic": 1})
	if got != "5 (server 3, panic 1, shape 1)" {
		t.Fatalf("counts => %q", got)
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("/tmp/a.png", 40); got != "/tmp/a.png" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/home/someone/projects/media/exports/2024/dashboard.xlsx"
	got := TruncatePath(long, 30)
	if !strings.HasSuffix(got, "/...dashboard.xlsx") || len(got) > 32 {
		t.Fatalf("truncate => %q", got)
	}
	if got := TruncatePath(long, 10); got != "...dashboard.xlsx" {
		t.Fatalf("tiny budget => %q", got)
	}
}
