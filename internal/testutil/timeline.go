package testutil

import (
	"strings"
)

// TimelineBuilder assembles a wide timeline CSV row by row.
//
//	csv := testutil.NewTimeline("2024-01", "2024-02").
//		Row("N-Alimentación", "-150000", "-145000").
//		Row("R-Sueldo", "500000", "500000").
//		String()
type TimelineBuilder struct {
	header []string
	rows   [][]string
}

// NewTimeline starts a timeline with the default category column and the
// given period headers.
func NewTimeline(periods ...string) *TimelineBuilder {
	return NewTimelineWithColumn("Categorías", periods...)
}

// NewTimelineWithColumn starts a timeline with a custom first header.
func NewTimelineWithColumn(column string, periods ...string) *TimelineBuilder {
	header := append([]string{column}, periods...)
	return &TimelineBuilder{header: header}
}

// Row appends a category row; missing trailing cells are left blank.
func (b *TimelineBuilder) Row(category string, cells ...string) *TimelineBuilder {
	row := make([]string, len(b.header))
	row[0] = category
	copy(row[1:], cells)
	b.rows = append(b.rows, row)
	return b
}

// String renders the CSV, quoting cells that need it.
func (b *TimelineBuilder) String() string {
	var sb strings.Builder
	writeLine(&sb, b.header)
	for _, r := range b.rows {
		writeLine(&sb, r)
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		if strings.ContainsAny(c, ",\"\n") {
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
			sb.WriteByte('"')
			continue
		}
		sb.WriteString(c)
	}
	sb.WriteByte('\n')
}
