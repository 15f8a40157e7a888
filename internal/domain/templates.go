package domain

import (
	"fmt"
	"strings"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	noCodeMessage     = "No user code provided."
	parseErrorMessage = "Failed to parse user code; please check syntax."
	noFunctionsMsg    = "No top-level functions detected in provided code."

	placeholderArg = "None"
	noParamsLabel  = "(none)"
)

const loadErrorGuard = `    if USER_CODE_EXEC_ERROR is not None:
        pytest.skip(f'User code failed to exec: {USER_CODE_EXEC_ERROR}')
`

// testSeparator keeps two blank lines between top-level definitions.
const testSeparator = "\n\n"

func noCodeCase() m.TestCase {
	name := "test_skeleton_no_code"

	return m.TestCase{
		Kind: m.Degenerate,
		Name: name,
		Text: testSeparator + "def " + name + "():\n" +
			"    pytest.skip('" + noCodeMessage + "')\n",
	}
}

func parseErrorCase() m.TestCase {
	return guardedSkipCase("test_skeleton_parse_error", parseErrorMessage)
}

func noFunctionsCase() m.TestCase {
	return guardedSkipCase("test_skeleton_no_functions", noFunctionsMsg)
}

func guardedSkipCase(name, message string) m.TestCase {
	return m.TestCase{
		Kind: m.Degenerate,
		Name: name,
		Text: testSeparator + "def " + name + "():\n" +
			loadErrorGuard +
			"    pytest.skip('" + message + "')\n",
	}
}

func existsCase(fn m.FunctionSignature) m.TestCase {
	name := fmt.Sprintf("test_%s_exists_and_callable", fn.Name)

	var b strings.Builder

	b.WriteString(testSeparator)
	fmt.Fprintf(&b, "def %s():\n", name)
	b.WriteString(loadErrorGuard)
	fmt.Fprintf(&b, "    obj = ns.get(%q)\n", fn.Name)
	fmt.Fprintf(&b, "    assert obj is not None, \"Function '%s' not found in namespace.\"\n", fn.Name)
	fmt.Fprintf(&b, "    assert callable(obj), \"Object '%s' is not callable.\"\n", fn.Name)

	return m.TestCase{Kind: m.ExistsCheck, Name: name, Function: fn.Name, Text: b.String()}
}

func smokeCase(fn m.FunctionSignature) m.TestCase {
	name := fmt.Sprintf("test_%s_smoke_no_required_args", fn.Name)

	var b strings.Builder

	b.WriteString(testSeparator)
	fmt.Fprintf(&b, "def %s():\n", name)
	b.WriteString(loadErrorGuard)
	fmt.Fprintf(&b, "    ns[%q]()\n", fn.Name)

	return m.TestCase{Kind: m.SmokeCall, Name: name, Function: fn.Name, Text: b.String()}
}

// placeholderCase never calls the function: arguments must come from a human.
func placeholderCase(fn m.FunctionSignature) m.TestCase {
	name := fmt.Sprintf("test_%s_smoke_placeholders", fn.Name)

	params := noParamsLabel
	if len(fn.PositionalParams) > 0 {
		params = strings.Join(fn.PositionalParams, ", ")
	}

	args := make([]string, max(1, fn.NumRequired()))
	for i := range args {
		args[i] = placeholderArg
	}

	var b strings.Builder

	b.WriteString(testSeparator)
	fmt.Fprintf(&b, "def %s():\n", name)
	b.WriteString(loadErrorGuard)
	b.WriteString("    pytest.skip(\n")
	fmt.Fprintf(&b, "        \"Add realistic sample inputs for '%s' and remove this skip. \"\n", fn.Name)
	fmt.Fprintf(&b, "        \"Detected params: %s; has_varargs=%s, has_varkw=%s.\"\n",
		params, pythonBool(fn.HasVarArgs), pythonBool(fn.HasVarKwargs))
	b.WriteString("    )\n")
	b.WriteString("    # Example call (adjust types/values!):\n")
	fmt.Fprintf(&b, "    # ns[%q](%s)\n", fn.Name, strings.Join(args, ", "))

	return m.TestCase{Kind: m.Placeholder, Name: name, Function: fn.Name, Text: b.String()}
}

func pythonBool(v bool) string {
	if v {
		return "True"
	}

	return "False"
}
