package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// placeholderRe matches $[[param_id]] parameter references.
var placeholderRe = regexp.MustCompile(`\$\[\[([A-Za-z_][A-Za-z0-9_]*)\]\]`)

// roleRe matches ${role} and $role substitutions in command strings.
// $$ escapes a literal dollar sign.
var roleRe = regexp.MustCompile(`\$(?:\$|\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*))`)

// PlaceholderID returns the parameter id if s is exactly one $[[id]]
// placeholder.
func PlaceholderID(s string) (string, bool) {
	m := placeholderRe.FindStringSubmatch(s)
	if m != nil && m[0] == s {
		return m[1], true
	}
	return "", false
}

// PlaceholderIDs collects all $[[id]] references in a spec value,
// descending into maps and lists. The result preserves first-seen order.
func PlaceholderIDs(v any) []string {
	var ids []string
	seen := make(map[string]bool)
	collectPlaceholders(v, seen, &ids)
	return ids
}

func collectPlaceholders(v any, seen map[string]bool, ids *[]string) {
	switch val := v.(type) {
	case string:
		for _, m := range placeholderRe.FindAllStringSubmatch(val, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				*ids = append(*ids, m[1])
			}
		}
	case []any:
		for _, item := range val {
			collectPlaceholders(item, seen, ids)
		}
	case []string:
		for _, item := range val {
			collectPlaceholders(item, seen, ids)
		}
	case map[string]any:
		for _, item := range val {
			collectPlaceholders(item, seen, ids)
		}
	}
}

// ReplaceArgs replaces $[[id]] placeholders in a spec value with the
// given argument values, descending into maps and lists. A string that is
// exactly one placeholder is replaced by the typed value; placeholders
// embedded in longer strings are replaced textually.
func ReplaceArgs(spec any, values map[string]any) any {
	switch v := spec.(type) {
	case string:
		if id, ok := PlaceholderID(v); ok {
			if val, bound := values[id]; bound {
				return val
			}
			return v
		}
		return placeholderRe.ReplaceAllStringFunc(v, func(m string) string {
			id := placeholderRe.FindStringSubmatch(m)[1]
			if val, bound := values[id]; bound {
				return fmt.Sprintf("%v", val)
			}
			return m
		})
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = ReplaceArgs(item, values)
		}
		return result
	case []string:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = ReplaceArgs(item, values)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, item := range v {
			result[key] = ReplaceArgs(item, values)
		}
		return result
	default:
		return spec
	}
}

// ReplaceArgsList is ReplaceArgs for a list of strings, stringifying the
// substituted values.
func ReplaceArgsList(items []string, values map[string]any) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = fmt.Sprintf("%v", ReplaceArgs(item, values))
	}
	return result
}

// ExpandCommand substitutes ${role} and $role references in a command
// string with the given role values. A reference to an undeclared role is
// an InvalidTemplateError. "$$" produces a literal "$".
func ExpandCommand(cmd string, roles map[string]any) (string, error) {
	var missing []string
	expanded := roleRe.ReplaceAllStringFunc(cmd, func(m string) string {
		if m == "$$" {
			return "$"
		}
		sub := roleRe.FindStringSubmatch(m)
		role := sub[1]
		if role == "" {
			role = sub[2]
		}
		val, ok := roles[role]
		if !ok {
			missing = append(missing, role)
			return m
		}
		return fmt.Sprintf("%v", val)
	})
	if len(missing) > 0 {
		return "", &model.InvalidTemplateError{
			Reason: fmt.Sprintf("undefined role '%s' in command", strings.Join(missing, "', '")),
		}
	}
	return expanded, nil
}

// CommandRoles returns the role names referenced by a command string, in
// first-seen order.
func CommandRoles(cmd string) []string {
	var roles []string
	seen := make(map[string]bool)
	for _, m := range roleRe.FindAllStringSubmatch(cmd, -1) {
		role := m[1]
		if role == "" {
			role = m[2]
		}
		if role == "" || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles
}
