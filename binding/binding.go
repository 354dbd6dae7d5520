// Package binding 处理投递说明（caption）中的 ${path.to.value} 模板。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/inkpost/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Facts 汇总文档信息，供 caption 模板使用：
// ${document.title}、${document.pages}、${document.size}、${document.lines}、${document.date}，
// 以及 ${document.keywords[0]} 与 ${document.meta.subject} 这类按元数据取值的路径。
func Facts(doc *layout.Document, fileName string, size int, now time.Time) map[string]any {
	facts := map[string]any{
		"title": fileName,
		"size":  size,
		"date":  now.UTC().Format("2006-01-02"),
	}
	if doc != nil {
		lines := 0
		for _, p := range doc.Pages {
			lines += len(p.Lines)
		}
		facts["pages"] = len(doc.Pages)
		facts["lines"] = lines
		if doc.Meta.Title != "" {
			facts["title"] = doc.Meta.Title
		}
		if doc.Meta.Author != "" {
			facts["author"] = doc.Meta.Author
		}
		facts["keywords"] = splitKeywords(doc.Meta.Keywords)
		facts["meta"] = map[string]string{
			"title":    doc.Meta.Title,
			"author":   doc.Meta.Author,
			"subject":  doc.Meta.Subject,
			"creator":  doc.Meta.Creator,
			"keywords": doc.Meta.Keywords,
		}
	}
	return map[string]any{"document": facts}
}

// splitKeywords 按逗号切分关键字并去掉空项。
func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil
	}
	name, rest := segment[:i], segment[i:]
	var indexes []string
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
