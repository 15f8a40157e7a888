package model

// FunctionSignature describes a top-level function declaration of a snippet.
type FunctionSignature struct {
	Name string `yaml:"name"`
	// PositionalParams excludes an implicit self/cls.
	PositionalParams  []string `yaml:"positional_params"`
	KeywordOnlyParams []string `yaml:"keyword_only_params,omitempty"`
	HasVarArgs        bool     `yaml:"has_varargs"`
	HasVarKwargs      bool     `yaml:"has_varkw"`
	NumDefaults       int      `yaml:"num_defaults"`
	Line              int      `yaml:"line"`
}

// NumRequired is the number of positional parameters without a default value.
func (f FunctionSignature) NumRequired() int {
	return max(0, len(f.PositionalParams)-f.NumDefaults)
}

// AutoCallable reports whether a zero-argument smoke call is generated for the function.
// It is a signature heuristic only; it says nothing about side effects.
func (f FunctionSignature) AutoCallable() bool {
	return f.NumRequired() == 0 && !f.HasVarArgs && !f.HasVarKwargs
}
