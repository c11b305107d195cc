package gdb

import (
	"testing"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    RecordKind
		token   int
		class   string
		text    string
		results string
	}{
		{
			name: "prompt",
			line: "(gdb) ",
			kind: RecordPrompt,
		},
		{
			name: "console stream",
			line: `~"\t0x00000240 - 0x0000c6a0 is .text\n"`,
			kind: RecordConsole,
			text: "\t0x00000240 - 0x0000c6a0 is .text\n",
		},
		{
			name: "log stream",
			line: `&"info files\n"`,
			kind: RecordLog,
			text: "info files\n",
		},
		{
			name:  "result with token",
			line:  "17^done",
			kind:  RecordResult,
			token: 17,
			class: "done",
		},
		{
			name:    "error result",
			line:    `3^error,msg="No symbol table is loaded."`,
			kind:    RecordResult,
			token:   3,
			class:   "error",
			results: `msg="No symbol table is loaded."`,
		},
		{
			name:    "async record",
			line:    `=thread-group-added,id="i1"`,
			kind:    RecordAsync,
			class:   "thread-group-added",
			results: `id="i1"`,
		},
		{
			name: "garbage",
			line: "warning: something odd",
			kind: RecordUnknown,
			text: "warning: something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseRecord(tt.line)
			if rec.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", rec.Kind, tt.kind)
			}
			if rec.Token != tt.token {
				t.Errorf("Token = %d, want %d", rec.Token, tt.token)
			}
			if rec.Class != tt.class {
				t.Errorf("Class = %q, want %q", rec.Class, tt.class)
			}
			if rec.Text != tt.text {
				t.Errorf("Text = %q, want %q", rec.Text, tt.text)
			}
			if rec.Results != tt.results {
				t.Errorf("Results = %q, want %q", rec.Results, tt.results)
			}
		})
	}
}

func TestRecord_ErrorMessage(t *testing.T) {
	rec := ParseRecord(`5^error,msg="No such file or directory: \"Shell.efi\"."`)
	want := `No such file or directory: "Shell.efi".`
	if got := rec.ErrorMessage(); got != want {
		t.Errorf("ErrorMessage() = %q, want %q", got, want)
	}
}

func TestUnquoteCString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`quote \"x\"`, `quote "x"`},
		{`back\\slash`, `back\slash`},
		{`octal \101\102`, "octal AB"},
		{`unknown \q`, `unknown \q`},
		{`trailing \`, `trailing \`},
	}

	for _, tt := range tests {
		if got := unquoteCString(tt.in); got != tt.want {
			t.Errorf("unquoteCString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteCString(t *testing.T) {
	got := quoteCString(`file C:\fw\"x".efi`)
	want := `"file C:\\fw\\\"x\".efi"`
	if got != want {
		t.Errorf("quoteCString() = %s, want %s", got, want)
	}

	if back := unquoteCString(got[1 : len(got)-1]); back != `file C:\fw\"x".efi` {
		t.Errorf("round trip = %q", back)
	}
}
