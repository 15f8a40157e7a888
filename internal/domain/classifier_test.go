package domain

import (
	"context"
	"testing"
)

func TestClassifier_IsCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", " \n\t\n", false},
		{"simple function", "def f(): pass", true},
		{"prose", "not code at all !! ###", false},
		{"bare string literal", "'hello'", true},
		{"lone identifier", "hello", true},
		{"unclosed paren", "this is ( not python", false},
		{"nul byte", "x = 1\x00", false},
		{"invalid utf8", "x = '\xff'", false},
		{"python 2 print", "print 'hi'", false},
		{"markdown fence", "```python\ndef f(): pass\n```", false},
		{"pytest module", "import pytest\n\ndef test_a():\n    assert 1 == 1\n", true},
		{"header without body", "def f():", false},
		{"class without body", "class A:\n", false},
		{"truncated pytest module", "import pytest\n\ndef test_add():\n    assert add(1, 2) == 3\n\ndef test_add_negative():", false},
		{"non-default after default", "def f(a=1, b): pass", false},
		{"parameter after kwargs", "def f(**k, a): pass", false},
		{"two star parameters", "def f(*a, *b): pass", false},
		{"star after double star", "f(**k, *a)", false},
		{"delete call", "del f()", false},
		{"bare walrus", "x := 1", false},
		{"leading zero integer", "x = 0777", false},
		{"inconsistent tab dedent", "if x:\n        a = 1\n\tb = 2\n", false},
		{"keyword-only after default", "def f(a=1, *, b): pass", true},
		{"parenthesized walrus", "(y := 2)", true},
	}

	classifier := newTestClassifier()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsCode(context.Background(), tt.text); got != tt.want {
				t.Errorf("IsCode(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifier_IsCode_RecoversFromPanics(t *testing.T) {
	classifier := NewClassifier(panickingPythonAdapter{})

	if classifier.IsCode(context.Background(), "def f(): pass") {
		t.Fatalf("IsCode() = true after parser panic")
	}
}

func TestClassifier_IsCode_NilAdapter(t *testing.T) {
	if NewClassifier(nil).IsCode(context.Background(), "def f(): pass") {
		t.Fatalf("IsCode() = true without an adapter")
	}
}

func TestClassifier_IsCode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if newTestClassifier().IsCode(ctx, "def f(): pass") {
		t.Fatalf("IsCode() = true with a cancelled context")
	}
}
