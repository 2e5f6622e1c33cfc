package schema

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"waiwaier/internal/value"
)

var (
	tableRe  = regexp.MustCompile(`^table\s+(.+?)(?:\s*\(([^)]*)\))?\s*:$`)
	columnRe = regexp.MustCompile(`^([^:#]+?)\s*:\s*(\S+)(.*)$`)
	enumRe   = regexp.MustCompile(`(?i)^(enum|enumlist)\[(.*)\]$`)
	refRe    = regexp.MustCompile(`(?i)^ref\[([^\]]+)\]$`)
)

// splitOptionTokens splits `k=v k2="v 2" pattern=^[A-Z _-]+$` into tokens.
// Spaces inside quotes, [...] and {...} do not split; an unquoted # at the
// start of a token ends the line.
func splitOptionTokens(s string) []string {
	var out []string
	var buf []rune
	inSingle, inDouble, escaped := false, false, false
	depth := 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = buf[:0]
		}
	}

	for _, r := range s {
		if escaped {
			buf = append(buf, r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inDouble {
				escaped = true
			}
			buf = append(buf, r)
		case '\'':
			if !inDouble && depth == 0 {
				inSingle = !inSingle
			}
			buf = append(buf, r)
		case '"':
			if !inSingle && depth == 0 {
				inDouble = !inDouble
			}
			buf = append(buf, r)
		case '[', '{':
			if !inSingle && !inDouble {
				depth++
			}
			buf = append(buf, r)
		case ']', '}':
			if !inSingle && !inDouble && depth > 0 {
				depth--
			}
			buf = append(buf, r)
		case '#':
			if len(buf) == 0 && !inSingle && !inDouble && depth == 0 {
				flush()
				return out
			}
			buf = append(buf, r)
		default:
			if (r == ' ' || r == '\t' || r == ',') && !inSingle && !inDouble && depth == 0 {
				flush()
				continue
			}
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

// ParseDSL reads tables written in the text DSL:
//
//	table Customers (excel, json):
//	  > Customer master data
//	  ID: Text key
//	  Name: Text label required desc="Display name"
//	  Status: Enum[Active, "On hold"] default=Active
//	  Owner: Ref[Users.Email] note.Show_If="ISNOTBLANK([Name])"
//
// Ids are derived from names; Ref targets are resolved by name once every
// table has been read (see Normalize).
func ParseDSL(r io.Reader) ([]Table, error) {
	var tables []Table
	cur := -1
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// table <Name> (targets):
		if m := tableRe.FindStringSubmatch(line); m != nil {
			tables = append(tables, Table{
				Name:          strings.TrimSpace(m[1]),
				ExportTargets: parseTargets(m[2]),
			})
			cur = len(tables) - 1
			continue
		}
		if cur < 0 {
			// anything before the first table is ignored
			continue
		}
		t := &tables[cur]

		// > description
		if strings.HasPrefix(line, ">") {
			text := strings.TrimSpace(strings.TrimPrefix(line, ">"))
			if t.Description != "" {
				t.Description += "\n"
			}
			t.Description += text
			continue
		}

		m := columnRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: cannot parse %q", lineNo, line)
		}
		col, err := parseColumn(strings.TrimSpace(m[1]), m[2], m[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		col.Order = len(t.Columns)
		t.Columns = append(t.Columns, col)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	Normalize(tables)
	return tables, nil
}

func parseTargets(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, strings.ToLower(p))
	}
	return out
}

func parseColumn(name, rawType, tail string) (Column, error) {
	// a bracketed type may have been cut at the first space
	if strings.Contains(rawType, "[") && !strings.Contains(rawType, "]") {
		if idx := strings.Index(tail, "]"); idx >= 0 {
			rawType += tail[:idx+1]
			tail = tail[idx+1:]
		}
	}

	col := Column{Name: name, Type: rawType}

	if mm := enumRe.FindStringSubmatch(rawType); mm != nil {
		col.Type = TypeEnum
		if strings.EqualFold(mm[1], TypeEnumList) {
			col.Type = TypeEnumList
		}
		for _, p := range splitOptionTokens(mm[2]) {
			if s := unquote(p); s != "" {
				col.Constraints.EnumValues = append(col.Constraints.EnumValues, s)
			}
		}
	} else if mm := refRe.FindStringSubmatch(rawType); mm != nil {
		// names for now; normalize turns them into ids
		col.Type = TypeRef
		tbl, c, _ := strings.Cut(strings.TrimSpace(mm[1]), ".")
		col.Constraints.RefTableID = strings.TrimSpace(tbl)
		col.Constraints.RefColumnID = strings.TrimSpace(c)
	}

	for _, tok := range splitOptionTokens(strings.TrimSpace(tail)) {
		k, raw, hasValue := strings.Cut(tok, "=")
		if !hasValue {
			switch strings.ToLower(k) {
			case "key":
				col.IsKey = true
			case "label":
				col.IsLabel = true
			case "required":
				col.Constraints.Required = true
			case "unique":
				col.Constraints.Unique = true
			case "virtual":
				col.IsVirtual = true
			default:
				return Column{}, fmt.Errorf("column %q: unknown flag %q", name, k)
			}
			continue
		}

		v := unquote(raw)
		if noteKey, ok := strings.CutPrefix(k, "note."); ok {
			if col.Overrides == nil {
				col.Overrides = value.NewObject()
			}
			col.Overrides.Set(noteKey, noteValue(raw))
			continue
		}

		switch strings.ToLower(k) {
		case "id":
			col.ID = v
		case "default":
			col.Constraints.DefaultValue = v
		case "desc", "description":
			col.Description = v
		case "pattern":
			col.Constraints.Pattern = v
		case "min":
			n := parseNumeric(v)
			col.Constraints.MinValue = &n
		case "max":
			n := parseNumeric(v)
			col.Constraints.MaxValue = &n
		case "minlen", "maxlen":
			n, err := strconv.Atoi(v)
			if err != nil {
				return Column{}, fmt.Errorf("column %q: %s must be an integer", name, k)
			}
			if strings.EqualFold(k, "minlen") {
				col.Constraints.MinLength = &n
			} else {
				col.Constraints.MaxLength = &n
			}
		default:
			return Column{}, fmt.Errorf("column %q: unknown option %q", name, k)
		}
	}
	return col, nil
}

// noteValue keeps quoted text as a string and reads anything else as JSON
// when it parses (true, 12, null, [..], {..}).
func noteValue(raw string) value.Value {
	if isQuoted(raw) {
		return value.String(unquote(raw))
	}
	if v, err := value.Parse(raw); err == nil {
		return v
	}
	return value.String(raw)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if !isQuoted(s) {
		return s
	}
	if s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s[1 : len(s)-1]
}
