package layout

// Paginate 从 pageHeight - margin 开始向下放置行，每行占 lineHeight。
// 放置前若游标已低于 margin 且当前页非空，则封页并开启新页。
// 空输入也会得到一张空白页。
func Paginate(lines []Line, pageHeight, margin, lineHeight float64) []Page {
	pc := newPageCollector(pageHeight, margin)
	for _, line := range lines {
		pc.place(line, lineHeight)
	}
	return pc.pages
}

type pageCollector struct {
	height float64
	margin float64
	cursor float64
	pages  []Page
}

func newPageCollector(height, margin float64) *pageCollector {
	pc := &pageCollector{height: height, margin: margin}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() {
	pc.pages = append(pc.pages, Page{Index: len(pc.pages), Height: pc.height})
	pc.cursor = pc.height - pc.margin
}

func (pc *pageCollector) curr() *Page {
	return &pc.pages[len(pc.pages)-1]
}

func (pc *pageCollector) place(line Line, lineHeight float64) {
	if pc.cursor < pc.margin && len(pc.curr().Lines) > 0 {
		pc.newPage()
	}
	line.Y = pc.cursor
	page := pc.curr()
	page.Lines = append(page.Lines, line)
	pc.cursor -= lineHeight
}
