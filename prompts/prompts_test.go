package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormat(t *testing.T) {
	tmpl, err := Parse("Current conversation:\n{history}\nHuman: {input}\nAI: {{not a var}} {input}")
	require.NoError(t, err)
	assert.Equal(t, []string{"history", "input"}, tmpl.InputVariables)

	out, err := tmpl.Format(map[string]string{"history": "Human: hi\nAI: hello", "input": "how are you"})
	require.NoError(t, err)
	assert.Equal(t, "Current conversation:\nHuman: hi\nAI: hello\nHuman: how are you\nAI: {not a var} how are you", out)
}

func TestFormatMissingVariable(t *testing.T) {
	tmpl := MustParse("{history} {input}")
	_, err := tmpl.Format(map[string]string{"input": "x"})
	assert.ErrorIs(t, err, ErrMissingVariable)
	assert.Contains(t, err.Error(), "history")
}

func TestParseMalformed(t *testing.T) {
	for _, text := range []string{"{unclosed", "stray } brace", "empty {} name"} {
		_, err := Parse(text)
		assert.Error(t, err, text)
	}
	assert.Panics(t, func() { MustParse("{oops") })
}

func TestBuiltinsUseHistoryAndInput(t *testing.T) {
	registry := NewRegistry(Builtins()...)
	assert.Equal(t, []string{"creative_writer", "friendly", "helpful_assistant", "history_teacher", "teacher", "technical_expert"}, registry.Keys())

	for _, p := range registry.List() {
		assert.True(t, p.Template.HasVariable("history"), p.Key)
		assert.True(t, p.Template.HasVariable("input"), p.Key)
	}

	_, err := registry.Get(DefaultPersona)
	require.NoError(t, err)

	_, err = registry.Get("pirate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helpful_assistant")
}

func TestRAGTemplateVariables(t *testing.T) {
	assert.Equal(t, []string{"context", "input"}, RAGTemplate.InputVariables)
	assert.Equal(t, []string{"summary", "new_lines"}, SummaryTemplate.InputVariables)
}

func TestLoadPersonas(t *testing.T) {
	dir := t.TempDir()
	guide := "# Travel Guide\n\nKnows every city.\n\n## Template\n\nYou are a travel guide.\n{history}\nTraveller: {input}\nGuide:\n\n## Notes\n\nignored\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "travel_guide.md"), []byte(guide), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a persona"), 0o644))

	personas, err := LoadPersonas(dir)
	require.NoError(t, err)
	require.Len(t, personas, 1)

	p := personas[0]
	assert.Equal(t, "travel_guide", p.Key)
	assert.Equal(t, "Travel Guide", p.Name)
	assert.Equal(t, "You are a travel guide.\n{history}\nTraveller: {input}\nGuide:", p.Template.Text)

	registry := NewRegistry(append(Builtins(), personas...)...)
	got, err := registry.Get("travel_guide")
	require.NoError(t, err)
	assert.Equal(t, "Travel Guide", got.Name)
}

func TestLoadPersonasErrors(t *testing.T) {
	_, err := LoadPersonas(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte("# Bad\n\nno template here\n"), 0o644))
	_, err = LoadPersonas(dir)
	assert.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noinput.md"), []byte("# X\n## Template\nhello {history}\n"), 0o644))
	_, err = LoadPersonas(dir)
	assert.Error(t, err)
}
