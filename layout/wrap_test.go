package layout

import (
	"errors"
	"testing"

	"github.com/ByLCY/inkpost/markup"
)

func plainRun(text string, size float64) StyleRun {
	return StyleRun{Tokens: []markup.Token{{Kind: markup.KindText, Content: text}}, Style: StyleRecord{Size: size}}
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

// 宽度按 5pt/字符：每个词 20，空格 5。
func TestWrapUsesStrictLessThan(t *testing.T) {
	runs := []StyleRun{plainRun("aaaa bbbb", 10)}
	lines, err := Wrap(runs, 45, stubWidthOf)
	if err != nil {
		t.Fatalf("换行失败: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("宽度恰好等于上限时应换行，实际 %q", lineTexts(lines))
	}
	lines, _ = Wrap(runs, 46, stubWidthOf)
	if len(lines) != 1 || lines[0].Text() != "aaaa bbbb" || lines[0].Width != 45 {
		t.Fatalf("期望单行，实际 %+v", lines)
	}
}

func TestWrapOverlongWordAndEmptyParagraph(t *testing.T) {
	runs := []StyleRun{plainRun("x supercalifragilistic y\n\nz", 10)}
	lines, err := Wrap(runs, 40, stubWidthOf)
	if err != nil {
		t.Fatalf("换行失败: %v", err)
	}
	want := []string{"x", "supercalifragilistic", "y", "", "z"}
	got := lineTexts(lines)
	if len(got) != len(want) {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望 %q，实际 %q", want, got)
		}
		if lines[i].Index != i {
			t.Fatalf("行号应连续递增")
		}
	}
	if len(lines[3].Fragments) != 0 {
		t.Fatalf("空段落应产生空行")
	}
}

func TestWrapWordSpanningStyles(t *testing.T) {
	runs := []StyleRun{
		plainRun("foo", 10),
		{Tokens: []markup.Token{{Content: "bar baz"}}, Style: StyleRecord{Bold: true, Size: 12}},
	}
	lines, err := Wrap(runs, 1000, stubWidthOf)
	if err != nil {
		t.Fatalf("换行失败: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("期望单行，实际 %q", lineTexts(lines))
	}
	frags := lines[0].Fragments
	if len(frags) != 2 || frags[0].Text != "foo" || frags[1].Text != "bar baz" {
		t.Fatalf("片段划分不符: %+v", frags)
	}
	if frags[0].Width != 15 || frags[1].Width != 42 {
		t.Fatalf("每段应按自身样式测量: %+v", frags)
	}
	if lines[0].Width != 57 {
		t.Fatalf("行宽应为各段之和，实际 %g", lines[0].Width)
	}
}

func TestWrapRejectsNonPositiveWidth(t *testing.T) {
	_, err := Wrap([]StyleRun{plainRun("x", 10)}, 0, stubWidthOf)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("期望 ConfigError，实际 %v", err)
	}
}

func TestWrapKeepsNoBreakSpace(t *testing.T) {
	lines, _ := Wrap([]StyleRun{plainRun("10\u00a0km", 10)}, 20, stubWidthOf)
	if len(lines) != 1 {
		t.Fatalf("不换行空格不应断行，实际 %q", lineTexts(lines))
	}
}
