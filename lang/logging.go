package lang

import (
	"reflect"
	"sort"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// typeName names the runtime type of value for log attributes.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case *Object:
		return "object"
	}

	return reflect.TypeOf(value).String()
}
