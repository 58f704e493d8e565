package grid

import (
	"strconv"
	"strings"

	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/record"
)

// cellValue is what filtering and sorting see for a column: the computed
// text when the column has one (and does not sort on the raw value),
// otherwise the raw field.
func cellValue(h headcell.HeadCell, row record.Row) any {
	if h.ComputeValue != nil && !h.CompareUsingRaw {
		return h.ComputeValue(row)
	}
	return row.Get(h.Field)
}

// truthy follows the loose notion of "a value is present" the filters were
// designed around: nil, "", 0 and false are absent; collections are present
// even when empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case bool:
		return x
	}
	return true
}

// Filter keeps the rows matching every column filter in filters and the
// global query.
func Filter(headers []headcell.HeadCell, rows []record.Row, filters record.Row, query string) []record.Row {
	out := make([]record.Row, 0, len(rows))
	for _, row := range rows {
		if matchColumns(headers, row, filters) && matchQuery(headers, row, query) {
			out = append(out, row)
		}
	}
	return out
}

func matchColumns(headers []headcell.HeadCell, row, filters record.Row) bool {
	for _, h := range headers {
		if h.IsArray() {
			if !containsAll(row.Get(h.Field), filters[h.Field]) {
				return false
			}
			continue
		}
		val := cellValue(h, row)
		if !truthy(val) {
			continue
		}
		q := ""
		if f := filters[h.Field]; truthy(f) {
			q = strings.ToLower(record.Stringify(f))
		}
		if q == "" {
			continue
		}
		if !matchCell(h, val, q) {
			return false
		}
	}
	return true
}

func matchCell(h headcell.HeadCell, val any, q string) bool {
	if h.Type() == headcell.Number {
		switch q[0] {
		case '>':
			v, okV := parseLeadingFloat(record.Stringify(val))
			b, okB := parseLeadingFloat(q[1:])
			return okV && okB && v > b
		case '<':
			v, okV := parseLeadingFloat(record.Stringify(val))
			b, okB := parseLeadingFloat(q[1:])
			return okV && okB && v < b
		}
		if q == "0" {
			return true
		}
		return looseEqual(val, q)
	}
	if list, ok := record.AsList(val); ok {
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = record.Stringify(e)
		}
		return strings.EqualFold(strings.Join(parts, ","), q)
	}
	return strings.Contains(strings.ToLower(record.Stringify(val)), q)
}

// containsAll reports whether every id of want is present in have.
func containsAll(have, want any) bool {
	wantList, _ := record.AsList(want)
	if len(wantList) == 0 {
		return true
	}
	haveList, _ := record.AsList(have)
	ids := make(map[string]bool, len(haveList))
	for _, e := range haveList {
		ids[record.ElementID(e)] = true
	}
	for _, e := range wantList {
		if !ids[record.ElementID(e)] {
			return false
		}
	}
	return true
}

// matchQuery splits query on spaces; every token must be found in a word
// chunk of some cell.
func matchQuery(headers []headcell.HeadCell, row record.Row, query string) bool {
	if query == "" {
		return true
	}
	tokens := strings.Split(strings.ToLower(query), " ")
	found := make([]bool, len(tokens))
	for _, h := range headers {
		for _, chunk := range chunks(cellValue(h, row)) {
			chunk = strings.ToLower(chunk)
			for i, tok := range tokens {
				if strings.Contains(chunk, tok) {
					found[i] = true
				}
			}
		}
	}
	for _, f := range found {
		if !f {
			return false
		}
	}
	return true
}

// chunks splits a cell into searchable words. Numbers and other scalars are
// not searchable.
func chunks(v any) []string {
	if !truthy(v) {
		return nil
	}
	if s, ok := v.(string); ok {
		return strings.Split(s, " ")
	}
	list, ok := record.AsList(v)
	if !ok || len(list) == 0 {
		return nil
	}
	var out []string
	if _, isString := list[0].(string); isString {
		for _, e := range list {
			s, _ := e.(string)
			out = append(out, strings.Split(s, " ")...)
		}
		return out
	}
	if _, named := record.ElementName(list[0]); named {
		for _, e := range list {
			n, _ := record.ElementName(e)
			out = append(out, strings.Split(n, " ")...)
		}
	}
	return out
}

// looseEqual compares numerically when both sides are numbers, as text
// otherwise.
func looseEqual(val any, q string) bool {
	a, okA := parseLeadingFloat(record.Stringify(val))
	b, okB := parseFloatStrict(q)
	if okA && okB {
		return a == b
	}
	return strings.ToLower(record.Stringify(val)) == q
}

func parseFloatStrict(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// parseLeadingFloat reads the longest numeric prefix of s, so "12abc" is 12.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	return f, err == nil
}
