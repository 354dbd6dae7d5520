package layout

import (
	"testing"

	"github.com/ByLCY/inkpost/markup"
)

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		tok  markup.Token
		want StyleRecord
	}{
		{markup.Token{Kind: markup.KindText}, StyleRecord{Size: 12}},
		{markup.Token{Kind: markup.KindText, Styles: markup.Bold}, StyleRecord{Bold: true, Size: 14}},
		{markup.Token{Kind: markup.KindText, Styles: markup.Italic | markup.Underline}, StyleRecord{Italic: true, Underline: true, Size: 12, Skew: 0.2}},
		{markup.Token{Kind: markup.KindEmoji, Styles: markup.Bold | markup.Italic}, StyleRecord{Font: FontEmoji, Size: 12}},
		{markup.Token{Kind: markup.KindEmoji, Styles: markup.Underline}, StyleRecord{Font: FontEmoji, Underline: true, Size: 12}},
	}
	for _, tc := range cases {
		if got := Resolve(tc.tok, cfg); got != tc.want {
			t.Fatalf("Resolve(%+v) = %+v, want %+v", tc.tok, got, tc.want)
		}
	}
}

func TestGroupRunsFoldsAdjacentStyles(t *testing.T) {
	tokens := []markup.Token{
		{Kind: markup.KindText, Content: "a"},
		{Kind: markup.KindText, Content: "b"},
		{Kind: markup.KindText, Content: "c", Styles: markup.Bold},
		{Kind: markup.KindEmoji, Content: "😀", Styles: markup.Bold},
		{Kind: markup.KindEmoji, Content: "😀"},
	}
	runs := GroupRuns(tokens, DefaultConfig())
	if len(runs) != 3 {
		t.Fatalf("期望 3 个 run，实际 %d: %+v", len(runs), runs)
	}
	if len(runs[0].Tokens) != 2 || len(runs[2].Tokens) != 2 {
		t.Fatalf("相邻同样式 token 应合并: %+v", runs)
	}
}
