// Package document holds helpers for the JSON-like documents that flow
// through branches: map[string]interface{}, []interface{} and scalars.
package document

// Copy returns a deep copy of maps and slices; scalars are returned as is.
func Copy(value interface{}) interface{} {
	switch actual := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			result[k] = Copy(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, v := range actual {
			result[i] = Copy(v)
		}
		return result
	}
	return value
}

// With places value into doc. An empty key replaces the document; otherwise
// value is stored under key in a shallow copy of doc, or in a new map when
// doc is not a map.
func With(doc interface{}, key string, value interface{}) interface{} {
	if key == "" {
		return value
	}
	result := map[string]interface{}{}
	if aMap, ok := doc.(map[string]interface{}); ok {
		for k, v := range aMap {
			result[k] = v
		}
	}
	result[key] = value
	return result
}

// Map returns value as a map, or nil.
func Map(value interface{}) map[string]interface{} {
	aMap, _ := value.(map[string]interface{})
	return aMap
}
