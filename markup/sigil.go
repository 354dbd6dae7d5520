package markup

import "regexp"

// 双字符标记必须先于单字符标记处理，否则 **x** 会被拆成两个空的 *...*。
// 成对标记不跨行。
var sigilRules = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`\*\*([^\n]+?)\*\*`), "b"},
	{regexp.MustCompile(`__([^\n]+?)__`), "u"},
	{regexp.MustCompile(`~~([^\n]+?)~~`), "u"},
	{regexp.MustCompile(`\*([^*\n]+?)\*`), "b"},
	{regexp.MustCompile(`_([^_\n]+?)_`), "i"},
	{regexp.MustCompile(`~([^~\n]+?)~`), "u"},
}

// Normalize 把 Markdown 风格的成对标记改写为规范标签，未配对的标记原样保留。
func Normalize(text string) string {
	for _, rule := range sigilRules {
		text = rule.pattern.ReplaceAllString(text, "<"+rule.tag+">${1}</"+rule.tag+">")
	}
	return text
}
