package dispatch

// Test-only exports for internal functions.
var (
	SplitPath       = splitPath
	SnakeCase       = snakeCase
	JoinPath        = joinPath
	BuildBody       = buildBody
	CompileTemplate = compileTemplate
)

// MatchTemplate compiles pattern and matches path against it.
func MatchTemplate(pattern, path string) (map[string]string, bool) {
	t, err := compileTemplate(pattern)
	if err != nil {
		return nil, false
	}
	return t.match(splitPath(path))
}

// Captures returns the capture names of pattern.
func Captures(pattern string) []string {
	t, err := compileTemplate(pattern)
	if err != nil {
		return nil
	}
	return t.captures()
}
