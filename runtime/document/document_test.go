package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopy(t *testing.T) {
	source := map[string]interface{}{
		"body":  map[string]interface{}{"location": "Boston"},
		"items": []interface{}{1, map[string]interface{}{"a": "b"}},
	}
	clone := Copy(source).(map[string]interface{})
	assert.EqualValues(t, source, clone)

	clone["body"].(map[string]interface{})["location"] = "Paris"
	clone["items"].([]interface{})[0] = 2
	assert.Equal(t, "Boston", source["body"].(map[string]interface{})["location"])
	assert.Equal(t, 1, source["items"].([]interface{})[0])
}

func TestWith(t *testing.T) {
	var testCases = []struct {
		description string
		doc         interface{}
		key         string
		value       interface{}
		expect      interface{}
	}{
		{
			description: "empty key replaces",
			doc:         map[string]interface{}{"a": 1},
			value:       "x",
			expect:      "x",
		},
		{
			description: "key retains document",
			doc:         map[string]interface{}{"a": 1},
			key:         "b",
			value:       2,
			expect:      map[string]interface{}{"a": 1, "b": 2},
		},
		{
			description: "non map document",
			doc:         "text",
			key:         "b",
			value:       2,
			expect:      map[string]interface{}{"b": 2},
		},
	}

	for _, testCase := range testCases {
		actual := With(testCase.doc, testCase.key, testCase.value)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	doc := map[string]interface{}{"a": 1}
	_ = With(doc, "b", 2)
	assert.Len(t, doc, 1)
}
