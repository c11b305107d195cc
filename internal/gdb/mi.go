package gdb

import (
	"regexp"
	"strconv"
	"strings"
)

// RecordKind classifies a line of GDB/MI output.
type RecordKind int

const (
	RecordUnknown RecordKind = iota
	RecordConsole            // ~"..." console stream
	RecordTarget             // @"..." target stream
	RecordLog                // &"..." gdb log stream
	RecordResult             // [token]^class[,results]
	RecordAsync              // [token]*, + or = async records
	RecordPrompt             // (gdb)
)

// Record is a single parsed GDB/MI output line.
type Record struct {
	Kind    RecordKind
	Token   int
	Class   string // result/async class, e.g. "done", "error", "stopped"
	Text    string // decoded stream text
	Results string // raw ",key=value" tail of result/async records
}

var errorMsgPattern = regexp.MustCompile(`msg="((?:[^"\\]|\\.)*)"`)

// ErrorMessage returns the decoded msg field of an ^error record.
func (r Record) ErrorMessage() string {
	m := errorMsgPattern.FindStringSubmatch(r.Results)
	if m == nil {
		return r.Results
	}
	return unquoteCString(m[1])
}

// ParseRecord parses one line of GDB/MI output.
func ParseRecord(line string) Record {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "(gdb)") {
		return Record{Kind: RecordPrompt}
	}
	if line == "" {
		return Record{Kind: RecordUnknown}
	}

	switch line[0] {
	case '~':
		return Record{Kind: RecordConsole, Text: decodeStream(line[1:])}
	case '@':
		return Record{Kind: RecordTarget, Text: decodeStream(line[1:])}
	case '&':
		return Record{Kind: RecordLog, Text: decodeStream(line[1:])}
	}

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	token := 0
	if i > 0 {
		token, _ = strconv.Atoi(line[:i])
	}
	if i >= len(line) {
		return Record{Kind: RecordUnknown, Text: line}
	}

	var kind RecordKind
	switch line[i] {
	case '^':
		kind = RecordResult
	case '*', '+', '=':
		kind = RecordAsync
	default:
		return Record{Kind: RecordUnknown, Text: line}
	}

	rest := line[i+1:]
	class, results, _ := strings.Cut(rest, ",")
	return Record{Kind: kind, Token: token, Class: class, Results: results}
}

func decodeStream(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return unquoteCString(s[1 : len(s)-1])
	}
	return s
}

// unquoteCString decodes the C escapes GDB/MI uses inside c-strings.
// Unknown escapes are kept verbatim.
func unquoteCString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\\', '\'':
			b.WriteByte(s[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 8)
			b.WriteByte(byte(v))
			i = j - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// quoteCString quotes a console command for -interpreter-exec.
func quoteCString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
