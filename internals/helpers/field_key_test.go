package helper_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	helper "district_platform/internals/helpers"
)

func TestFieldKey(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Crop Name", "crop_name"},
		{"  Total Area (ha)  ", "total_area_ha"},
		{"Yield % 2024", "yield_2024"},
		{"already_a_key", "already_a_key"},
		{"UPPER", "upper"},
		{"a--b__c", "a_b_c"},
		{"Qty.", "qty"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, helper.FieldKey(tc.label), "label %q", tc.label)
	}
}

func TestFieldKeyStripsNonASCII(t *testing.T) {
	// Devanagari inside a Latin label disappears without leaving a separator
	assert.Equal(t, "name", helper.FieldKey("पीक Name"))
	assert.Equal(t, "areaha", helper.FieldKey("areaक्षेत्रha"))
}

func TestFieldKeyFallsBackForNonLatinLabels(t *testing.T) {
	key := helper.FieldKey("पीक वर्ष")
	assert.True(t, strings.HasPrefix(key, "field_"), "got %q", key)
	assert.Len(t, key, len("field_")+6)

	// fallback keys are random, two calls must differ
	assert.NotEqual(t, key, helper.FieldKey("पीक वर्ष"))
}

func TestRandomKeySuffixLength(t *testing.T) {
	assert.Len(t, helper.RandomKeySuffix(3), 3)
	assert.Len(t, helper.RandomKeySuffix(6), 6)
}
