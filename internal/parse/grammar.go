package parse

import (
	"regexp"
	"strconv"
	"strings"

	t "perspectives/internal/types"
)

var (
	// reMarker matches a segment boundary such as "3.", "3)", "**3.**",
	// "### 3." or "Perspective 3:" at the start of a line.
	reMarker = regexp.MustCompile(`(?i)^[ \t>]*(?:#{1,6}[ \t]*)?(?:\*\*|__)?[ \t]*(?:perspective[ \t]+)?(\d{1,2})(?:[.)]|[ \t]*:)(?:\*\*|__)?(?:[ \t]+|$)`)

	// reLabel matches the start of a labeled line. What follows the label is
	// checked by labelValue.
	reLabel = regexp.MustCompile(`(?i)^[ \t]*(?:[-*•+][ \t]+)?(\*\*|__)?[ \t]*(key[ \t]+criteria|criteria|stance|position|reasoning|reason)\b(.*)$`)

	reBullet = regexp.MustCompile(`^[ \t]*(?:[-*•+]|\d{1,2}[.)])[ \t]+`)
)

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldStance
	fieldCriteria
	fieldReason
)

// split cuts raw into segments at the first occurrence of each marker 1, 2,
// … in sequence. Text before marker 1 is discarded. At most ten segments are
// returned; extra reports how many further markers followed.
func split(raw string) (segs []string, extra int) {
	s := segmenter{expect: 1}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		s.feed(line)
	}
	s.flush()
	return s.segs, s.extra
}

// segmenter tells perspective markers apart from numbered lists nested in a
// field. A marker deeper than marker 1, one that directly follows a bare
// label, or one that continues a nested list is content.
type segmenter struct {
	segs  []string
	extra int

	expect int
	indent int // indentation of marker 1
	open   bool
	lines  []string

	pending   bool // the last label opened a field with no value yet
	subNext   int  // next number of a list nested in the open field, 0 if none
	subIndent int
}

func (s *segmenter) feed(line string) {
	n, body, ind, isMarker := marker(line)
	if isMarker && s.boundary(n, body, ind) {
		s.flush()
		if n == 1 {
			s.indent = ind
		}
		s.expect++
		s.open = true
		s.lines = []string{body}
		s.subNext, s.pending = 0, false
		if _, v, ok := labelValue(body); ok {
			s.pending = strings.TrimSpace(v) == ""
		}
		return
	}
	if !s.open {
		return
	}
	s.lines = append(s.lines, line)
	s.track(line, n, ind, isMarker)
}

func (s *segmenter) boundary(n int, body string, ind int) bool {
	switch {
	case n != s.expect:
		return false
	case n == 1:
		return true
	case ind > s.indent, s.pending:
		return false
	case n == s.subNext:
		if kind, _, ok := labelValue(body); ok && kind == fieldStance {
			return true
		}
		return s.subIndent > ind
	}
	return true
}

// track updates the nested-list state with a line kept inside a segment.
func (s *segmenter) track(line string, n, ind int, isMarker bool) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if isMarker {
		if n == 1 {
			s.subNext, s.subIndent = 2, ind
		} else if s.subNext > 0 && n == s.subNext {
			s.subNext++
		}
		s.pending = false
		return
	}
	if _, v, ok := labelValue(line); ok {
		s.subNext = 0
		s.pending = strings.TrimSpace(v) == ""
		return
	}
	s.pending = false
}

func (s *segmenter) flush() {
	if !s.open {
		return
	}
	if len(s.segs) < t.PerspectivesPerSet {
		s.segs = append(s.segs, strings.Join(s.lines, "\n"))
	} else {
		s.extra++
	}
	s.open, s.lines = false, nil
}

// marker reports whether line starts with a numbered marker and returns the
// number, the text after it and the line's indentation.
func marker(line string) (n int, body string, indent int, ok bool) {
	m := reMarker.FindStringSubmatchIndex(line)
	if m == nil {
		return 0, "", 0, false
	}
	n, err := strconv.Atoi(line[m[2]:m[3]])
	if err != nil {
		return 0, "", 0, false
	}
	return n, line[m[1]:], indentOf(line), true
}

func indentOf(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

// readFields walks a segment line by line. A label line opens a field and
// plain lines continue it, across blank lines, until the next label. A blank
// line inside a field is kept as a paragraph break. In the final segment a
// paragraph after a blank line is closing chatter and is dropped.
func readFields(seg string, final bool) fields {
	var f fields
	cur := fieldNone
	gap := false
	for i, line := range strings.Split(seg, "\n") {
		if kind, value, ok := labelValue(line); ok {
			cur, gap = kind, false
			f.add(cur, value)
			continue
		}
		if strings.TrimSpace(line) == "" {
			if i > 0 {
				gap = true
				f.add(cur, "")
			}
			continue
		}
		if i == 0 {
			f.lead = line
			continue
		}
		if gap && final {
			cur = fieldNone
		}
		gap = false
		if _, body, _, ok := marker(line); ok {
			if kind, _, ok := labelValue(body); ok && kind == fieldStance {
				f.strayStance = true
			}
		}
		f.add(cur, line)
	}
	return f
}

func (f *fields) add(kind fieldKind, value string) {
	switch kind {
	case fieldStance:
		f.stance = append(f.stance, value)
	case fieldCriteria:
		f.criteria = append(f.criteria, value)
	case fieldReason:
		f.reason = append(f.reason, value)
	}
}

// labelValue reports whether line starts with a field label and returns the
// text after it. The label must be followed by a separator (":" or a dash),
// be wrapped in bold, or stand alone on its line, so prose that merely
// begins with "Reason" is not taken for a label.
func labelValue(line string) (fieldKind, string, bool) {
	m := reLabel.FindStringSubmatch(line)
	if m == nil {
		return fieldNone, "", false
	}
	bold := m[1] != ""
	rest := strings.TrimLeft(m[3], " \t")

	closed := false
	if r, ok := cutMark(rest); ok {
		rest, closed = r, true
	}
	sep := false
	for _, s := range []string{":", "-", "–", "—"} {
		if r, ok := strings.CutPrefix(rest, s); ok {
			rest, sep = strings.TrimLeft(r, " \t"), true
			break
		}
	}
	if r, ok := cutMark(rest); ok {
		rest, closed = r, true
	}
	if !sep && !(bold && closed) && strings.TrimSpace(rest) != "" {
		return fieldNone, "", false
	}

	var kind fieldKind
	switch label := strings.ToLower(strings.Join(strings.Fields(m[2]), " ")); label {
	case "stance", "position":
		kind = fieldStance
	case "criteria", "key criteria":
		kind = fieldCriteria
	default:
		kind = fieldReason
	}
	return kind, rest, true
}

func cutMark(s string) (string, bool) {
	for _, mark := range []string{"**", "__"} {
		if r, ok := strings.CutPrefix(s, mark); ok {
			return strings.TrimLeft(r, " \t"), true
		}
	}
	return s, false
}

// splitCriteria turns bulleted, comma, semicolon or newline separated
// criteria into trimmed, non-empty items.
func splitCriteria(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = reBullet.ReplaceAllString(line, "")
		for _, item := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
			item = cleanValue(strings.Trim(item, " \t\"'[]"))
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
