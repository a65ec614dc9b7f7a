package layout

import "strings"

const ellipsis = "…"

// fitRows turns paragraphs into at most limit rows no wider than width.
// Paragraphs are word-wrapped only while every paragraph can still get a row
// of its own; overflowing text ends in an ellipsis.
func fitRows(cv Canvas, paragraphs []string, width float64, limit int) []string {
	if limit <= 0 {
		return nil
	}
	rows := make([]string, 0, limit)
	if len(paragraphs) < limit {
		for i, p := range paragraphs {
			wrapped := wrapWords(cv, p, width)
			// keep one row for each remaining paragraph
			room := limit - len(rows) - (len(paragraphs) - i - 1)
			if len(wrapped) > room {
				wrapped = wrapped[:room]
				wrapped[room-1] += ellipsis
			}
			rows = append(rows, wrapped...)
		}
	} else {
		rows = append(rows, paragraphs[:limit]...)
	}
	for i := range rows {
		rows[i] = truncate(cv, rows[i], width)
	}
	return rows
}

func wrapWords(cv Canvas, s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var rows []string
	line := words[0]
	for _, w := range words[1:] {
		if next := line + " " + w; cv.StringWidth(next) <= width {
			line = next
			continue
		}
		rows = append(rows, line)
		line = w
	}
	return append(rows, line)
}

// truncate shortens s until it fits width, marking the cut with an ellipsis.
func truncate(cv Canvas, s string, width float64) string {
	if cv.StringWidth(s) <= width {
		return s
	}
	r := []rune(strings.TrimSuffix(s, ellipsis))
	for len(r) > 0 {
		r = r[:len(r)-1]
		if candidate := strings.TrimRight(string(r), " ,") + ellipsis; cv.StringWidth(candidate) <= width {
			return candidate
		}
	}
	return ellipsis
}
