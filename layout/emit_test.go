package layout

import "testing"

func TestEmitAdvancesX(t *testing.T) {
	bold := StyleRecord{Bold: true, Size: 14}
	pages := []Page{{Index: 0, Lines: []Line{{
		Y: 100,
		Fragments: []Fragment{
			{Text: "ab ", Style: StyleRecord{Size: 12}, Width: 18},
			{Text: "", Style: StyleRecord{Size: 12}, Width: 0},
			{Text: "cd", Style: bold, Width: 14},
		},
	}}}, {Index: 1, Lines: []Line{{Y: 90, Fragments: []Fragment{{Text: "e", Style: StyleRecord{Size: 12, Italic: true, Skew: 0.2}, Width: 6}}}}}}
	red := Color{R: 255}
	cmds := Emit(pages, 20, red)
	if len(cmds) != 3 {
		t.Fatalf("空片段应被跳过，实际 %+v", cmds)
	}
	if cmds[0].X != 20 || cmds[1].X != 38 || !cmds[1].Bold || cmds[1].Size != 14 {
		t.Fatalf("x 坐标或样式不符: %+v", cmds[:2])
	}
	if cmds[2].Page != 1 || cmds[2].X != 20 || cmds[2].Y != 90 || cmds[2].Skew != 0.2 || cmds[2].Color != red {
		t.Fatalf("第二页命令不符: %+v", cmds[2])
	}
}
