package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordNames(t *testing.T) {
	for k := Keyword(1); k < nbKeywords; k++ {
		s := k.String()
		assert.NotEmpty(t, s, "missing name for %d", k)
		assert.Equal(t, k, NewKeyword(s))
	}
	assert.Equal(t, Keyword(0), NewKeyword("not-a-keyword"))
	assert.Equal(t, "", Keyword(255).String())
}

func TestIsIn(t *testing.T) {
	assert.True(t, Left.IsIn(Left, Right))
	assert.False(t, Center.IsIn(Left, Right))
}
