package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextPartKind(t *testing.T) {
	var p Part = Text{Text: "hello"}

	assert.Equal(t, "text", p.PartKind())
}
