package layout

import "testing"

func TestPaginateEmpty(t *testing.T) {
	pages := Paginate(nil, 800, 50, 24)
	if len(pages) != 1 || len(pages[0].Lines) != 0 || pages[0].Height != 800 {
		t.Fatalf("空输入应得到一张空白页，实际 %+v", pages)
	}
}

// 页高 100，边距 10，行高 30：基线依次为 90/60/30，游标降到 0 后低于边距，因此每页 3 行。
func TestPaginateBreaksBelowMargin(t *testing.T) {
	lines := make([]Line, 5)
	for i := range lines {
		lines[i].Index = i
	}
	pages := Paginate(lines, 100, 10, 30)
	if len(pages) != 2 || len(pages[0].Lines) != 3 || len(pages[1].Lines) != 2 {
		t.Fatalf("分页结果不符: %+v", pages)
	}
	wantY := []float64{90, 60, 30, 90, 60}
	idx := 0
	for p, page := range pages {
		if page.Index != p {
			t.Fatalf("页号应连续")
		}
		for _, l := range page.Lines {
			if l.Index != idx || l.Y != wantY[idx] {
				t.Fatalf("第 %d 行位置不符: %+v", idx, l)
			}
			idx++
		}
	}
}
