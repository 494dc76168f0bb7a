package keyformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "DEFAULT", Default.String())
	assert.Equal(t, "VARIABLES", Variables.String())
	assert.Equal(t, "AWAIT_WORKLOW_RESULT", AwaitWorkflowResult.String())
	assert.Equal(t, "UNKNOWN_4242", Category(4242).String())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"VARIABLES", Variables},
		{"variables", Variables},
		{" jobs ", Jobs},
		{"15", Jobs},
		{"4242", Category(4242)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCategory("NOT_A_CATEGORY")
	assert.Error(t, err)
}

func TestCategoryPrefix(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 10}, Variables.Prefix())

	c, ok := CategoryOf(NewKey(Variables).Long(1).Bytes())
	require.True(t, ok)
	assert.Equal(t, Variables, c)

	_, ok = CategoryOf([]byte{1})
	assert.False(t, ok)
}

func TestCategoriesOrdered(t *testing.T) {
	cats := Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, Default, cats[0])
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1], cats[i])
	}
	assert.Len(t, cats, len(catalog))
}

func TestNoCategoryName(t *testing.T) {
	assert.Equal(t, "UNKNOWN", NoCategory.String())
	assert.False(t, NoCategory.Known())
}
