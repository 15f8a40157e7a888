package domain

import (
	"context"
	"strings"
	"testing"
)

func FuzzSynthesize(f *testing.F) {
	f.Add("")
	f.Add("def a(): return 1")
	f.Add("def add(x, y): return x+y")
	f.Add("def f(x=1, *args, **kw): pass")
	f.Add("this is ( not python")
	f.Add(`s = """unterminated`)
	f.Add("trailing backslash \\")
	f.Add("@decorator\ndef g(*, key): ...\n")
	f.Add("def f():\n")
	f.Add("def \U0001D523(a=1, b): pass")

	synth := newTestSynthesizer()
	classifier := newTestClassifier()

	f.Fuzz(func(t *testing.T, snippet string) {
		module := synth.Build(context.Background(), snippet)
		out := module.String()

		if !strings.HasPrefix(out, "import pytest\n") {
			t.Fatalf("module does not start with the pytest import:\n%s", out)
		}

		if !classifier.IsCode(context.Background(), out) {
			t.Fatalf("synthesized module is not valid Python for %q:\n%s", snippet, out)
		}

		for _, tc := range module.Cases {
			if err := checkCaseBody(tc); err != nil {
				t.Fatalf("snippet %q: %v", snippet, err)
			}
		}
	})
}
