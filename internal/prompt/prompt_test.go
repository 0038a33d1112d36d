package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate(t *testing.T) {
	assert.Contains(t, Template(UserStory), "**Acceptance criteria**")
	assert.Contains(t, Template(UserStory), "**Functional Test Cases**")
	assert.Contains(t, Template(Epic), "8. Stakeholders:")
	assert.Contains(t, Template(Diagram), "mermaid code")

	for _, name := range Names() {
		assert.True(t, strings.HasPrefix(Template(name), "\n"), name)
		assert.True(t, Known(name))
	}
}

func TestTemplate_Default(t *testing.T) {
	assert.Equal(t, "\nGenerate comprehensive answer for the user query.", Template(""))
	assert.Equal(t, Template(""), Template("Haiku"))
	assert.False(t, Known("Haiku"))
}
