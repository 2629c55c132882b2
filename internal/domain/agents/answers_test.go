package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"Yes", true},
		{"true", true},
		{"TRUE sure", true},
		{"  yes.  ", true},
		{"no", false},
		{"", false},
		{"maybe", false},
		{"false", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAffirmative(tt.answer))
		})
	}
}

func TestParseLabels(t *testing.T) {
	assert.Equal(t, []string{"cat", "animal"}, ParseLabels("cat, animal"))
	assert.Equal(t, []string{"red car", "street"}, ParseLabels(" red car ,, street, red car,"))
	assert.Nil(t, ParseLabels(" , "))
}
