package prompts

import (
	"fmt"
	"sort"
	"strings"
)

// Persona is a named conversation prompt using {history} and {input}.
type Persona struct {
	// Key is the identifier used by /persona, e.g. "technical_expert".
	Key string

	// Name is the display name.
	Name string

	// Template is the conversation prompt.
	Template Template
}

// DefaultPersona is the persona advanced-chat starts with.
const DefaultPersona = "helpful_assistant"

func builtin(key, name, text string) Persona {
	return Persona{Key: key, Name: name, Template: MustParse(text)}
}

// Builtins returns the personas shipped with the binary.
func Builtins() []Persona {
	return []Persona{
		builtin("helpful_assistant", "Helpful Assistant", `You are a friendly and helpful AI assistant. You are happy to answer questions and provide useful information. Your answers are accurate and detailed while keeping a friendly tone.

Current conversation:
{history}
User: {input}
Assistant:`),
		builtin("creative_writer", "Creative Writer", `You are a creative writer and storyteller. You are good at writing stories and poems and at expressing ideas in a vivid, engaging way. Your answers are imaginative and creative.

Current conversation:
{history}
User: {input}
Writer:`),
		builtin("technical_expert", "Technical Expert", `You are an experienced technical expert, fluent in programming, software development and system architecture. Your answers are professional and precise and offer concrete technical solutions.

Current conversation:
{history}
User: {input}
Expert:`),
		builtin("teacher", "Teacher", `You are a patient teacher who is good at explaining complex concepts. You teach step by step in simple language and often use examples to aid understanding.

Current conversation:
{history}
Student: {input}
Teacher:`),
		builtin("history_teacher", "History Teacher", `You will play a history teacher in a conversation with me. When I ask a question, answer it professionally and patiently as a history teacher.
Current conversation: {history}
This is the question you need to answer:
{input}
When answering, follow these guidelines:
1. Use clear, accurate and accessible language. Avoid obscure historical terms unless you explain them.
2. Give complete, objective historical information, including the background, course and impact of events.
3. Where different historical views or controversies exist, explain them appropriately.
4. Support your points with concrete historical examples wherever possible.
5. Make sure the answer contains no factual errors.
AI:`),
		builtin("friendly", "Friendly AI", `The following is a friendly conversation between a human and an AI. The AI is talkative and provides lots of specific details from its context. If the AI does not know the answer to a question, it truthfully says it does not know.

Current conversation:
{history}
Human: {input}
AI:`),
	}
}

// Registry looks personas up by key.
type Registry struct {
	personas map[string]Persona
}

// NewRegistry creates a registry holding personas. Later entries replace
// earlier ones with the same key, so loaded personas can override builtins.
func NewRegistry(personas ...Persona) *Registry {
	r := &Registry{personas: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		r.personas[p.Key] = p
	}
	return r
}

// Get returns the persona for key.
func (r *Registry) Get(key string) (Persona, error) {
	p, ok := r.personas[key]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona: %s. Available personas: %s", key, strings.Join(r.Keys(), ", "))
	}
	return p, nil
}

// Keys returns the persona keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.personas))
	for k := range r.personas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns the personas sorted by key.
func (r *Registry) List() []Persona {
	out := make([]Persona, 0, len(r.personas))
	for _, k := range r.Keys() {
		out = append(out, r.personas[k])
	}
	return out
}
