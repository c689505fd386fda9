package registry

import (
	"os"
	"strings"
	"testing"

	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
)

func TestLookupKnownType(t *testing.T) {
	spec, err := Lookup("codex")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if spec.Command != "codex" || len(spec.Args) != 1 || spec.Args[0] != "acp" {
		t.Fatalf("Lookup(\"codex\") = %+v, want {codex [acp]}", spec)
	}
}

func TestLookupUnknownTypeListsSortedNames(t *testing.T) {
	_, err := Lookup("frobnicator")
	if !apierr.Is(err, apierr.Configuration) {
		t.Fatalf("expected a Configuration error, got %v", err)
	}
	sorted := strings.Join(SortedTypeNames(), ", ")
	if !strings.Contains(err.Error(), sorted) {
		t.Fatalf("error %q does not contain the sorted type list %q", err, sorted)
	}
}

func TestSortedTypeNamesIsSorted(t *testing.T) {
	names := SortedTypeNames()
	if len(names) != len(KnownAgentTypes) {
		t.Fatalf("got %d names, want %d", len(names), len(KnownAgentTypes))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}

func TestGenerateNameIgnoresOtherTypes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	if _, err := endpoint.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	touch(t, endpoint.SockPath("codex-1"))
	touch(t, endpoint.SockPath("claude-7"))

	name := GenerateName("codex")
	if name != "codex-2" {
		t.Fatalf("GenerateName(\"codex\") = %q, want \"codex-2\"", name)
	}
	name = GenerateName("gemini")
	if name != "gemini-1" {
		t.Fatalf("GenerateName(\"gemini\") = %q, want \"gemini-1\"", name)
	}
}

func TestAgentTypeOf(t *testing.T) {
	typ, ok := AgentTypeOf("claude-3")
	if !ok || typ != "claude" {
		t.Fatalf("AgentTypeOf(\"claude-3\") = (%q, %v), want (\"claude\", true)", typ, ok)
	}
	if _, ok := AgentTypeOf("not-a-valid-name"); !ok {
		// "not-a-valid-name" still matches {type}-{N}? last segment
		// must be numeric, so this should fail to match.
		return
	}
	t.Fatal("AgentTypeOf should reject a name with a non-numeric suffix")
}

func touch(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %q: %v", path, err)
	}
	f.Close()
}
