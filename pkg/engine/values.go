package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// getPath resolves a dotted path through nested records and member lists.
func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at path. Intermediate records are created on demand;
// member lists are never grown here, since their length belongs to the
// repeater.
func setPath(root map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	var current any = root
	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return nil
			}
			next, ok := node[segment]
			if !ok || next == nil {
				if _, err := strconv.Atoi(segments[i+1]); err == nil {
					return fmt.Errorf("%w: %s", ErrIndexOutOfRange, path)
				}
				next = make(map[string]any)
				node[segment] = next
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return fmt.Errorf("engine: expected member index in %q, got %q", path, segment)
			}
			if idx < 0 || idx >= len(node) {
				return fmt.Errorf("%w: %s", ErrIndexOutOfRange, path)
			}
			if last {
				node[idx] = value
				return nil
			}
			if node[idx] == nil {
				node[idx] = make(map[string]any)
			}
			current = node[idx]
		default:
			return fmt.Errorf("engine: cannot descend into %T at %q", node, strings.Join(segments[:i+1], "."))
		}
	}
	return nil
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = v
		}
		return clone
	default:
		return typed
	}
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

// schemaPath strips member indices so "teamMembers.2.name" becomes
// "teamMembers.name".
func schemaPath(path string) string {
	segments := strings.Split(path, ".")
	kept := segments[:0]
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, ".")
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
