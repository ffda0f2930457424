package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "강남역", FirstNonEmpty("", "  ", "강남역", "서울 강남구"))
	assert.Equal(t, "", FirstNonEmpty(" ", ""))
	assert.Equal(t, "", FirstNonEmpty())
}
