package manifest

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// lineIndex maps byte offsets to zero-based line numbers
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	starts := lineIndex{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) lineOf(offset uint32) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > int(offset) }) - 1
}

// parsed markers collected from the TOML expressions
type tableMark struct {
	line int
	name string
}

type entryMark struct {
	first, last int
	key         string
	source      string
	description string
}

// Parse reads a manifest. name is used in error messages only.
func Parse(name string, data []byte) (*Document, error) {
	if err := validateTOML(name, data); err != nil {
		return nil, err
	}

	tables, entries, err := scan(name, data)
	if err != nil {
		return nil, err
	}

	lines, eol := splitLines(data)
	doc := assemble(lines, tables, entries)
	doc.eol = eol
	return doc, nil
}

// splitLines splits data on line feeds. When every line break is CRLF the
// carriage returns are stripped and reported as the line ending, so lines
// rendered later match the rest of the file.
func splitLines(data []byte) ([]string, string) {
	text := string(data)
	lf := strings.Count(text, "\n")
	if lf > 0 && strings.Count(text, "\r\n") == lf {
		return strings.Split(text, "\r\n"), "\r\n"
	}
	return strings.Split(text, "\n"), "\n"
}

// validateTOML runs the full decoder, which reports syntax errors, duplicate
// keys and table redefinitions with positions.
func validateTOML(name string, data []byte) error {
	var sink map[string]interface{}
	err := toml.Unmarshal(data, &sink)
	if err == nil {
		return nil
	}

	var decodeErr *toml.DecodeError
	if stderrors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return parseError(name, row, col, strings.TrimPrefix(decodeErr.Error(), "toml: ")).
			WithDetail("context", decodeErr.String())
	}
	return errors.Wrapf(err, errors.ErrParse, "%s is not valid TOML", name).
		WithDetail("file", name)
}

func parseError(name string, line, column int, msg string) *errors.AppError {
	return errors.Newf(errors.ErrParse, "%s:%d:%d: %s", name, line, column, msg).
		WithDetail("file", name).
		WithDetail("line", line).
		WithDetail("column", column)
}

// scan walks the expressions and records where tables and entries sit
func scan(name string, data []byte) ([]tableMark, []entryMark, error) {
	li := newLineIndex(data)
	p := unstable.Parser{KeepComments: true}
	p.Reset(data)

	var (
		tables  []tableMark
		entries []entryMark
	)

	position := func(r unstable.Range) (int, int) {
		shape := p.Shape(r)
		return shape.Start.Line, shape.Start.Column
	}

	for p.NextExpression() {
		e := p.Expression()

		switch e.Kind {
		case unstable.ArrayTable:
			keys, first := keyParts(e)
			line, col := position(first.Raw)
			return nil, nil, parseError(name, line, col,
				"array tables are not supported: [["+strings.Join(keys, ".")+"]]")

		case unstable.Table:
			keys, first := keyParts(e)
			if len(keys) != 1 {
				line, col := position(first.Raw)
				return nil, nil, parseError(name, line, col,
					"nested tables are not supported: ["+strings.Join(keys, ".")+"]")
			}
			tables = append(tables, tableMark{line: li.lineOf(first.Raw.Offset), name: keys[0]})

		case unstable.KeyValue:
			keys, first := keyParts(e)
			if len(tables) == 0 {
				// top-level settings are kept verbatim and ignored
				continue
			}
			if len(keys) != 1 {
				line, col := position(first.Raw)
				return nil, nil, parseError(name, line, col,
					"dotted keys are not supported: "+strings.Join(keys, "."))
			}
			value := e.Value()
			if value.Kind != unstable.String {
				line, col := position(first.Raw)
				return nil, nil, parseError(name, line, col,
					"the value of "+keys[0]+" must be a source name string, got "+value.Kind.String())
			}

			mark := entryMark{
				first:  li.lineOf(first.Raw.Offset),
				last:   li.lineOf(value.Raw.Offset + value.Raw.Length - 1),
				key:    keys[0],
				source: string(value.Data),
			}
			if c := e.Next(); c != nil && c.Kind == unstable.Comment {
				mark.description = commentText(c.Data)
				if l := li.lineOf(c.Raw.Offset); l > mark.last {
					mark.last = l
				}
			}
			entries = append(entries, mark)
		}
	}

	if err := p.Error(); err != nil {
		var perr *unstable.ParserError
		if stderrors.As(err, &perr) && len(perr.Highlight) > 0 {
			line, col := position(p.Range(perr.Highlight))
			return nil, nil, parseError(name, line, col, perr.Message)
		}
		return nil, nil, errors.Wrapf(err, errors.ErrParse, "%s is not valid TOML", name)
	}

	return tables, entries, nil
}

func keyParts(e *unstable.Node) ([]string, *unstable.Node) {
	var (
		parts []string
		first *unstable.Node
	)
	it := e.Key()
	for it.Next() {
		n := it.Node()
		if first == nil {
			first = n
		}
		parts = append(parts, string(n.Data))
	}
	return parts, first
}

func commentText(data []byte) string {
	text := strings.TrimSpace(string(data))
	text = strings.TrimLeft(text, "#")
	return SanitizeDescription(text)
}

// assemble partitions the source lines into preamble, headers, intros,
// entries and trailers.
func assemble(lines []string, tables []tableMark, entries []entryMark) *Document {
	doc := &Document{}

	firstHeader := len(lines)
	if len(tables) > 0 {
		firstHeader = tables[0].line
	}
	doc.preamble = append([]string(nil), lines[:firstHeader]...)

	ei := 0
	var pendingLead []string
	for ti, t := range tables {
		end := len(lines)
		if ti+1 < len(tables) {
			end = tables[ti+1].line
		}

		g := &group{name: t.name, lead: pendingLead, header: lines[t.line]}
		pendingLead = nil
		cursor := t.line + 1

		for ei < len(entries) && entries[ei].first < end {
			m := entries[ei]
			gap := append([]string(nil), lines[cursor:m.first]...)
			if len(g.entries) == 0 {
				g.intro = gap
				gap = nil
			}
			g.entries = append(g.entries, &entry{
				key:         m.key,
				source:      m.source,
				description: m.description,
				before:      gap,
				lines:       append([]string(nil), lines[m.first:m.last+1]...),
			})
			cursor = m.last + 1
			ei++
		}

		rest := append([]string(nil), lines[cursor:end]...)
		if ti+1 < len(tables) {
			var lead []string
			rest, lead = splitLead(rest)
			pendingLead = lead
		}
		if len(g.entries) == 0 {
			g.intro = rest
		} else {
			g.trailer = rest
		}
		doc.groups = append(doc.groups, g)
	}

	return doc
}

// splitLead separates the run of comment lines that ends right above the
// next header, so they stay with that header.
func splitLead(lines []string) (rest, lead []string) {
	i := len(lines)
	for i > 0 && !isBlank(lines[i-1]) {
		i--
	}
	if i == len(lines) {
		return lines, nil
	}
	return lines[:i], append([]string(nil), lines[i:]...)
}
