package main

import (
	"testing"

	"github.com/benoitkugler/vformat/css/properties"
	"github.com/stretchr/testify/assert"
)

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "z-index", kebabCase("ZIndex"))
	assert.Equal(t, "border-top-color", kebabCase("BorderTopColor"))
}

func TestConstants(t *testing.T) {
	props := parseConstants("../properties.go")
	assert.Len(t, props, int(properties.NbProps)-1)
	for _, p := range props {
		assert.Equal(t, p.propName, p.value.String())
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Keyword", typeName(properties.InitialValues[properties.PPosition]))
	assert.Equal(t, "Value", typeName(properties.InitialValues[properties.PWidth]))
}
