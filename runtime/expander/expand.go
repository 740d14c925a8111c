package expander

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/viant/smalltalk/runtime/document"
)

var (
	pureVariable = regexp.MustCompile(`^\$[a-zA-Z_][a-zA-Z0-9_\.\[\]]*$`)
	simpleVar    = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_.]*(?:\[[0-9]+\])*)`)
)

// Expand walks value and expands every string it contains against vars.
// Maps and slices are copied, never modified in place.
func Expand(value interface{}, vars map[string]interface{}) interface{} {
	switch actual := value.(type) {
	case nil:
		return nil
	case string:
		return expand(actual, vars)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			result[k] = Expand(v, vars)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, v := range actual {
			result[i] = Expand(v, vars)
		}
		return result
	}
	return value
}

// expand expands variable references in a string. A string that is only a
// reference ($var or ${path}) yields the referenced value with its type, and
// an unresolved ${path} yields nil so a missing value never reads as a zero;
// references embedded in text are interpolated as strings.
func expand(value string, from map[string]interface{}) interface{} {
	if !strings.Contains(value, "$") {
		return value
	}
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") &&
		!strings.Contains(value[2:len(value)-1], "${") {
		expr := strings.TrimSpace(value[2 : len(value)-1])
		if expr == "" {
			return ""
		}
		res, ok := Lookup(expr, from)
		if !ok {
			return nil
		}
		return document.Copy(res)
	}
	if pureVariable.MatchString(value) {
		if res, ok := Lookup(value[1:], from); ok {
			return document.Copy(res)
		}
		return value
	}

	var b strings.Builder
	for i := 0; i < len(value); {
		rest := value[i:]
		if strings.HasPrefix(rest, "${") {
			if end := findMatchingClosingBrace(rest); end != -1 {
				replacement, _ := Lookup(strings.TrimSpace(rest[2:end]), from)
				b.WriteString(stringifyValue(replacement))
				i += end + 1
				continue
			}
		}
		if rest[0] == '$' {
			if loc := simpleVar.FindStringIndex(rest); loc != nil && loc[0] == 0 {
				token := rest[:loc[1]]
				if replacement, ok := Lookup(token[1:], from); ok {
					b.WriteString(stringifyValue(replacement))
				} else {
					b.WriteString(token)
				}
				i += loc[1]
				continue
			}
		}
		b.WriteByte(value[i])
		i++
	}
	return b.String()
}

// Lookup resolves a path such as "input.body.location" or "items[0].title".
// The special root "$" or "state" selectors are plain variables like any other.
func Lookup(expr string, from map[string]interface{}) (interface{}, bool) {
	rootEnd := strings.IndexAny(expr, ".[")
	rootName := expr
	if rootEnd != -1 {
		rootName = expr[:rootEnd]
	}
	root, ok := from[rootName]
	if !ok {
		return nil, false
	}
	if rootEnd == -1 {
		return root, true
	}
	return processPath(root, expr[rootEnd:])
}

// findMatchingClosingBrace finds the position of the closing brace of an
// expression starting with "${", accounting for nested braces.
func findMatchingClosingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// processPath evaluates a path expression like ".users[1].name" or "[0].email"
func processPath(current interface{}, path string) (interface{}, bool) {
	i := 0
	for i < len(path) {
		if path[i] == '.' {
			i++
			continue
		}
		if path[i] == '[' {
			closeBracket := strings.IndexByte(path[i:], ']')
			if closeBracket < 0 {
				return nil, false
			}
			closeBracket += i
			index, err := strconv.Atoi(path[i+1 : closeBracket])
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = getArrayElement(current, index); !ok {
				return nil, false
			}
			i = closeBracket + 1
			continue
		}
		propEnd := strings.IndexAny(path[i:], ".[")
		if propEnd == -1 {
			propEnd = len(path)
		} else {
			propEnd += i
		}
		var ok bool
		if current, ok = getProperty(current, path[i:propEnd]); !ok {
			return nil, false
		}
		i = propEnd
	}
	return current, true
}

// getProperty reads a map key or struct field; map keys fall back to a
// case-insensitive match.
func getProperty(obj interface{}, prop string) (interface{}, bool) {
	switch actual := obj.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		if val, ok := actual[prop]; ok {
			return val, true
		}
		for k, v := range actual {
			if strings.EqualFold(k, prop) {
				return v, true
			}
		}
		return nil, false
	case map[string]string:
		val, ok := actual[prop]
		return val, ok
	}
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, false
		}
		val = val.Elem()
	}
	switch val.Kind() {
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := val.MapIndex(reflect.ValueOf(prop).Convert(val.Type().Key()))
		if !v.IsValid() || !v.CanInterface() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag := strings.Split(field.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				name = tag
			}
			if strings.EqualFold(name, prop) || strings.EqualFold(field.Name, prop) {
				return val.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

// getArrayElement extracts an element from an array or slice
func getArrayElement(obj interface{}, index int) (interface{}, bool) {
	if arr, ok := obj.([]interface{}); ok {
		if index >= 0 && index < len(arr) {
			return arr[index], true
		}
		return nil, false
	}
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, false
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Array && val.Kind() != reflect.Slice {
		return nil, false
	}
	if index < 0 || index >= val.Len() {
		return nil, false
	}
	return val.Index(index).Interface(), true
}

// stringifyValue converts a value to its string representation for
// interpolation; composite values are rendered as JSON.
func stringifyValue(val interface{}) string {
	if val == nil {
		return ""
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.String:
		return v.String()
	case reflect.Map, reflect.Slice, reflect.Struct, reflect.Ptr:
		if data, err := json.Marshal(val); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", val)
}
