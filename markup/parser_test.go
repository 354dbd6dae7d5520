package markup

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeSigils(t *testing.T) {
	cases := map[string]string{
		"**a** *b*":        "<b>a</b> <b>b</b>",
		"__u__ _i_":        "<u>u</u> <i>i</i>",
		"~~s~~ ~t~":        "<u>s</u> <u>t</u>",
		"lonely * star":    "lonely * star",
		"*open\nclose*":    "*open\nclose*",
		"2 * 3 = 6":        "2 * 3 = 6",
		"mixed **_both_**": "mixed <b><i>both</i></b>",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSpans(t *testing.T) {
	got := Parse("Hello <b>bold <i>both</i></b> tail")
	want := []Token{
		{Content: "Hello "},
		{Content: "bold ", Styles: Bold},
		{Content: "both", Styles: Bold | Italic},
		{Content: " tail"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseSigilTokens(t *testing.T) {
	got := Parse("**a** *b*")
	want := []Token{
		{Content: "a", Styles: Bold},
		{Content: " "},
		{Content: "b", Styles: Bold},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}

func TestTokenizeMalformed(t *testing.T) {
	cases := []struct {
		in   string
		want []Token
	}{
		{"a</b>b", []Token{{Content: "ab"}}},
		{"<b>open", []Token{{Content: "open", Styles: Bold}}},
		{"x <blink>y</blink> z", []Token{{Content: "x y z"}}},
		{"1 < 2 <3", []Token{{Content: "1 < 2 <3"}}},
		{"<b></b>", nil},
		{"<STRONG>loud</STRONG>", []Token{{Content: "loud", Styles: Bold}}},
		{`<span class="x">hi</span>`, []Token{{Content: "hi"}}},
		{`<b class="x">bold</b> plain`, []Token{{Content: "bold", Styles: Bold}, {Content: " plain"}}},
		{`a<br class="x"/>b`, []Token{{Content: "a\nb"}}},
		{`<font color="red" size=2>c</font>`, []Token{{Content: "c"}}},
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestTokenizeCloseRemovesLatestMatch(t *testing.T) {
	got := Tokenize("<b>1<i>2<b>3</b>4</i>5</b>6")
	want := []Token{
		{Content: "1", Styles: Bold},
		{Content: "2", Styles: Bold | Italic},
		{Content: "3", Styles: Bold | Italic},
		{Content: "4", Styles: Bold | Italic},
		{Content: "5", Styles: Bold},
		{Content: "6"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}

func TestTokenizeLineBreak(t *testing.T) {
	got := Tokenize("one<br>two<br/>three")
	if len(got) != 1 || got[0].Content != "one\ntwo\nthree" {
		t.Fatalf("expected single token with line breaks, got %+v", got)
	}
}

func TestTokenizePreservesText(t *testing.T) {
	in := "a <u>b</u> <i>c <b>d</b></i> <x>e</x>"
	var sb strings.Builder
	for _, tok := range Tokenize(in) {
		if tok.Kind != KindUnset {
			t.Fatalf("parser must leave kind unset, got %v", tok.Kind)
		}
		sb.WriteString(tok.Content)
	}
	if sb.String() != "a b c d e" {
		t.Fatalf("unexpected text %q", sb.String())
	}
}

func TestStylesString(t *testing.T) {
	if got := (Bold | Underline).String(); got != "bold|underline" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Styles(0).String(); got != "plain" {
		t.Fatalf("unexpected %q", got)
	}
	if Italic.Has(Bold) {
		t.Fatalf("italic must not report bold")
	}
}
