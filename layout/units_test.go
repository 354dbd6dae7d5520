package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 pt 的转换。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12pt", 12},
		{"10mm", 10 * MmToPt},
		{"2.54cm", 25.4 * MmToPt},
		{"1in", 25.4 * MmToPt},
		{" 5 MM ", 5 * MmToPt},
	}
	for _, tc := range cases {
		got, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("ParseLength(%q) 返回错误: %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseLength(%q) = %g, 期望 %g", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "mm", "abc", "1px"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("ParseLength(%q) 应当失败", bad)
		}
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义。
func TestLineHeightResolve(t *testing.T) {
	factor, err := ParseLineHeight("1.5x")
	if err != nil {
		t.Fatalf("解析倍数行高失败: %v", err)
	}
	if got := factor.Resolve(12); math.Abs(got-18) > 1e-9 {
		t.Fatalf("1.5x 期望 18pt，实际 %g", got)
	}
	abs, err := ParseLineHeight("10mm")
	if err != nil {
		t.Fatalf("解析绝对行高失败: %v", err)
	}
	if got := abs.Resolve(12); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm 期望 %g，实际 %g", 10*MmToPt, got)
	}
}
