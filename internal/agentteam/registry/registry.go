// Package registry holds the static agent-type -> subprocess-command
// catalog and the endpoint-directory name generator. This is a small,
// inert lookup table the `add` command needs to resolve a command; the
// supervisor itself never reads this package.
package registry

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
)

// AgentSpec is one known agent type's default subprocess invocation.
type AgentSpec struct {
	Command string
	Args    []string
}

// KnownAgentTypes maps an agent type name to its default command line.
var KnownAgentTypes = map[string]AgentSpec{
	"gemini":      {Command: "gemini", Args: []string{"--acp"}},
	"copilot":     {Command: "copilot", Args: []string{"--acp"}},
	"goose":       {Command: "goose", Args: []string{"acp"}},
	"claude":      {Command: "claude-code-acp"},
	"codex":       {Command: "codex", Args: []string{"acp"}},
	"auggie":      {Command: "auggie", Args: []string{"--acp"}},
	"kiro":        {Command: "kiro", Args: []string{"acp"}},
	"cline":       {Command: "cline", Args: []string{"acp"}},
	"blackbox":    {Command: "blackbox", Args: []string{"acp"}},
	"openhands":   {Command: "openhands", Args: []string{"acp"}},
	"qoder":       {Command: "qoder", Args: []string{"acp"}},
	"opencode":    {Command: "opencode", Args: []string{"acp"}},
	"kimi":        {Command: "kimi", Args: []string{"acp"}},
	"vibe":        {Command: "vibe", Args: []string{"acp"}},
	"qwen":        {Command: "qwen", Args: []string{"--acp"}},
	"cagent":      {Command: "cagent", Args: []string{"acp"}},
	"fast-agent":  {Command: "fast-agent", Args: []string{"acp"}},
	"stakpak":     {Command: "stakpak", Args: []string{"acp"}},
	"vtcode":      {Command: "vtcode", Args: []string{"acp"}},
	"pi":          {Command: "pi", Args: []string{"acp"}},
}

// SortedTypeNames returns every known agent type, sorted, for the
// "unknown agent type" error message.
func SortedTypeNames() []string {
	names := make([]string, 0, len(KnownAgentTypes))
	for name := range KnownAgentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves an agent type to its AgentSpec.
func Lookup(agentType string) (AgentSpec, error) {
	spec, ok := KnownAgentTypes[agentType]
	if !ok {
		return AgentSpec{}, apierr.New(apierr.Configuration, "unknown agent type %q, known types: %s",
			agentType, strings.Join(SortedTypeNames(), ", "))
	}
	return spec, nil
}

var namePattern = regexp.MustCompile(`^(.+)-(\d+)$`)

// ExistingNames scans the endpoint directory and returns every endpoint
// name currently present (the `.sock` stem), sorted.
func ExistingNames() []string {
	dir := endpoint.Dir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".sock") {
			names = append(names, strings.TrimSuffix(e.Name(), ".sock"))
		}
	}
	sort.Strings(names)
	return names
}

// GenerateName produces the next free `{type}-{N+1}` name for
// agentType: only endpoints of the requested type influence the
// counter.
func GenerateName(agentType string) string {
	max := 0
	for _, name := range ExistingNames() {
		m := namePattern.FindStringSubmatch(name)
		if m == nil || m[1] != agentType {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%d", agentType, max+1)
}

// AgentTypeOf best-effort extracts the agent type prefix from a name of
// the form `{type}-{N}`, returning ("", false) if it doesn't match.
func AgentTypeOf(name string) (string, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LogPath is re-exported for CLI convenience.
func LogPath(name string) string { return endpoint.LogPath(name) }
