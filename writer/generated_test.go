package writer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liran-funaro/cgrep/regex"
)

var equivalencePatterns = []string{
	"", "^", "$", "^$",
	"a", "^a", "a$", "^a$",
	"a*b", "^a*b$", ".", "^.*x$", ".*'x",
	"^(ab)*c", "a.c", "^(a(b)*c)*d$", "^é*$", "x\x00y", "\\",
}

var equivalenceTexts = []string{
	"", "a", "b", "ab", "aab", "x", "'x", "zz'x", "abc", "ababc", "abab c",
	"a\x00c", "abbcacd", "é", "\xc3\xa9\xa9", "x\x00y", "a\\b",
}

// results renders, for every text, the whole-text result followed by the
// result at every offset.
func results(match func(string) bool, matchAt func(string, int) bool) string {
	var sb strings.Builder
	for _, text := range equivalenceTexts {
		sb.WriteString(bit(match(text)))
		for off := 0; off <= len(text); off++ {
			sb.WriteString(bit(matchAt(text, off)))
		}
		sb.WriteByte(' ')
	}
	return sb.String()
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

const driverHeader = `package main

import (
	"fmt"
	"strings"
)

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func main() {
	for i := range matchers {
		var sb strings.Builder
		for _, text := range texts {
			sb.WriteString(bit(matchers[i](text)))
			for off := 0; off <= len(text); off++ {
				sb.WriteString(bit(matchersAt[i](text, off)))
			}
			sb.WriteByte(' ')
		}
		fmt.Println(sb.String())
	}
}
`

// TestGeneratedMatchesRegex builds the generated matchers into a program
// and compares their answers with the compiled Regex.
func TestGeneratedMatchesRegex(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a program")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not found")
	}

	dir := t.TempDir()
	var want, funcs, funcsAt []string
	for i, pattern := range equivalencePatterns {
		re := regex.MustCompile(pattern)
		want = append(want, results(re.MatchString, re.MatchAt))

		name := fmt.Sprintf("M%d", i)
		src, err := (&MatcherBuilder{Package: "main", Func: name}).Dump(re)
		require.NoError(t, err, pattern)
		require.NoError(t, os.WriteFile(filepath.Join(dir, strings.ToLower(name)+".go"), src, 0666))
		funcs = append(funcs, name)
		funcsAt = append(funcsAt, name+"At")
	}

	var texts []string
	for _, text := range equivalenceTexts {
		texts = append(texts, fmt.Sprintf("%q", text))
	}
	driver := driverHeader +
		"\nvar texts = []string{" + strings.Join(texts, ", ") + "}\n" +
		"\nvar matchers = []func(string) bool{" + strings.Join(funcs, ", ") + "}\n" +
		"\nvar matchersAt = []func(string, int) bool{" + strings.Join(funcsAt, ", ") + "}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(driver), 0666))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module matchers\n\ngo 1.22\n"), 0666))

	cmd := exec.Command(goBin, "run", ".")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	got := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, got, len(equivalencePatterns))
	for i, pattern := range equivalencePatterns {
		require.Equal(t, want[i], got[i], "%q", pattern)
	}
}
