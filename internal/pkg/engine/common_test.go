package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInstanceAlias(t *testing.T) {
	alias := NewInstanceAlias()
	assert.Len(t, alias, 6)
	assert.Regexp(t, "^[a-z]+$", alias)
}
