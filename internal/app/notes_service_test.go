package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabusgpt/internal/ai"
)

type fakeCompleter struct {
	fn    func(messages []ai.ChatMessage) (string, error)
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.calls++
	return f.fn(messages)
}

type fakeRetriever struct {
	kbText  string
	queries []string
}

func (f *fakeRetriever) Context(_ context.Context, query, _ string, _ bool, _ int) (string, error) {
	f.queries = append(f.queries, query)
	return f.kbText, nil
}

const testSyllabus = "UNIT-I: Intelligent agents and uninformed search strategies.\n" +
	"UNIT-II: Informed search, heuristics, and game playing."

func newTestNotesService(hyde, notes *fakeCompleter, retriever *fakeRetriever) *NotesService {
	return NewNotesService(hyde, notes, retriever, nil)
}

func TestGenerateAssemblesDocument(t *testing.T) {
	hyde := &fakeCompleter{fn: func(msgs []ai.ChatMessage) (string, error) {
		return "hypothetical answer document", nil
	}}
	notes := &fakeCompleter{fn: func(msgs []ai.ChatMessage) (string, error) {
		// Echo part of the unit prompt so each body is distinguishable.
		return "notes for: " + msgs[1].Content[:40], nil
	}}
	retriever := &fakeRetriever{kbText: "retrieved knowledge"}

	doc, err := newTestNotesService(hyde, notes, retriever).Generate(context.Background(), NotesInput{
		SyllabusText: testSyllabus,
		Subject:      "AI",
	})
	require.NoError(t, err)

	assert.Equal(t, "AI - Generated Notes", doc.Title)
	assert.Equal(t, []string{"UNIT-I:", "UNIT-II:"}, doc.UnitTitles)

	assert.True(t, strings.HasPrefix(doc.Markdown, "# AI - Generated Notes\n\n"))
	assert.Contains(t, doc.Markdown, "## Index\n\n1. UNIT-I:\n2. UNIT-II:\n")
	assert.Contains(t, doc.Markdown, "\n\n---\n\n")

	// One HyDE expansion and one retrieval per unit, in unit order.
	assert.Equal(t, 2, hyde.calls)
	require.Len(t, retriever.queries, 2)
	assert.Equal(t, "hypothetical answer document", retriever.queries[0])
}

// A failing unit becomes an inline placeholder; the rest of the document is
// still generated.
func TestGenerateUnitFailureIsIsolated(t *testing.T) {
	hyde := &fakeCompleter{fn: func([]ai.ChatMessage) (string, error) {
		return "expansion", nil
	}}
	notes := &fakeCompleter{fn: func(msgs []ai.ChatMessage) (string, error) {
		if strings.Contains(msgs[1].Content, "UNIT-I:") {
			return "", errors.New("model overloaded")
		}
		return "## Informed Search\n\nGood notes.", nil
	}}

	doc, err := newTestNotesService(hyde, notes, &fakeRetriever{}).Generate(context.Background(), NotesInput{
		SyllabusText: testSyllabus,
		Subject:      "AI",
	})
	require.NoError(t, err)

	assert.Contains(t, doc.Markdown, "> Notes for this unit could not be generated")
	assert.Contains(t, doc.Markdown, "model overloaded")
	assert.Contains(t, doc.Markdown, "Good notes.")
	assert.Equal(t, []string{"UNIT-I:", "UNIT-II:"}, doc.UnitTitles)
}

func TestGenerateEmptySyllabus(t *testing.T) {
	svc := newTestNotesService(&fakeCompleter{}, &fakeCompleter{}, &fakeRetriever{})
	_, err := svc.Generate(context.Background(), NotesInput{SyllabusText: "   \n "})
	assert.ErrorIs(t, err, ErrEmptySyllabus)
}

func TestGenerateDefaultTitle(t *testing.T) {
	hyde := &fakeCompleter{fn: func([]ai.ChatMessage) (string, error) { return "x", nil }}
	notes := &fakeCompleter{fn: func([]ai.ChatMessage) (string, error) { return "body", nil }}

	for _, subject := range []string{"", "ALL"} {
		doc, err := newTestNotesService(hyde, notes, &fakeRetriever{}).Generate(context.Background(), NotesInput{
			SyllabusText: "a syllabus with no unit markers at all",
			Subject:      subject,
		})
		require.NoError(t, err)
		assert.Equal(t, "Generated Notes", doc.Title)
	}
}

func TestExpandTrims(t *testing.T) {
	hyde := &fakeCompleter{fn: func(msgs []ai.ChatMessage) (string, error) {
		return "  a dense passage about " + msgs[1].Content + "  \n", nil
	}}
	svc := newTestNotesService(hyde, &fakeCompleter{}, &fakeRetriever{})

	out, err := svc.Expand(context.Background(), "finite automata")
	require.NoError(t, err)
	assert.Equal(t, "a dense passage about finite automata", out)
}

func TestParseTopics(t *testing.T) {
	hyde := &fakeCompleter{fn: func([]ai.ChatMessage) (string, error) {
		return "- Search algorithms\n2. Knowledge representation\n\n* Planning", nil
	}}
	svc := newTestNotesService(hyde, &fakeCompleter{}, &fakeRetriever{})

	topics, err := svc.ParseTopics(context.Background(), "some syllabus")
	require.NoError(t, err)
	assert.Equal(t, []string{"Search algorithms", "Knowledge representation", "Planning"}, topics)
}

func TestParseTopicsEmpty(t *testing.T) {
	svc := newTestNotesService(&fakeCompleter{}, &fakeCompleter{}, &fakeRetriever{})
	_, err := svc.ParseTopics(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptySyllabus)
}

func TestAssembleOrder(t *testing.T) {
	md := assemble("T", []string{"U1", "U2"}, []string{"body one", "body two"})
	first := strings.Index(md, "body one")
	second := strings.Index(md, "body two")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.Equal(t, "# T\n\n## Index\n\n1. U1\n2. U2\n\nbody one\n\n---\n\nbody two", md)
}
