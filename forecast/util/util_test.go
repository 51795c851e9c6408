package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentExpand(t *testing.T) {
	testData := map[string]struct {
		indent   string
		growth   int
		expected string
	}{
		"none":     {"  ", 0, ""},
		"negative": {"  ", -1, ""},
		"two":      {"\t", 2, "\t\t"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, IndentExpand(td.indent, td.growth))
		})
	}
}
