package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestLintFile(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "valid marker",
			src:  "package q\nconst QOne = `--sql 66a36e48-9649-4b65-9e73-7732398b0c0e\nselect 1`\n",
		},
		{
			name: "missing marker",
			src:  "package q\nconst QOne = `select 1`\n",
			want: []string{"missing or invalid"},
		},
		{
			name: "uppercase uuid",
			src:  "package q\nconst QOne = `--sql 66A36E48-9649-4B65-9E73-7732398B0C0E\ncreate table x ()`\n",
			want: []string{"missing or invalid"},
		},
		{
			name: "not sql",
			src:  "package q\nconst greeting = \"hello there\"\n",
		},
		{
			name: "duplicate marker",
			src: "package q\nconst (\n" +
				"QOne = `--sql 66a36e48-9649-4b65-9e73-7732398b0c0e\nselect 1`\n" +
				"QTwo = `--sql 66a36e48-9649-4b65-9e73-7732398b0c0e\nselect 2`\n)\n",
			want: []string{"already used"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintFile("q.go", tc.src); err != nil {
				t.Fatalf("lintFile: %v", err)
			}
			if len(l.violations) != len(tc.want) {
				t.Fatalf("got %d violations %v, want %d", len(l.violations), l.violations, len(tc.want))
			}
			for i, want := range tc.want {
				if !strings.Contains(l.violations[i].message, want) {
					t.Fatalf("violation %q does not mention %q", l.violations[i].message, want)
				}
			}
		})
	}
}

func TestLedgerQueriesPass(t *testing.T) {
	l := newLinter()
	if err := l.walk("../../sqlinline"); err != nil {
		t.Fatalf("walk: %v", err)
	}
	var buf bytes.Buffer
	if report(&buf, l.violations) {
		t.Fatalf("sqlinline has violations:\n%s", buf.String())
	}
	if len(l.seen) == 0 {
		t.Fatalf("expected markers in sqlinline")
	}
}
