package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"syllabusgpt/internal/ai"
	"syllabusgpt/internal/cache"
	"syllabusgpt/internal/pipeline/syllabus"
)

var ErrEmptySyllabus = errors.New("syllabus text is empty")

const notesSystemPrompt = "You are a notes-writing assistant. Create beautifully structured " +
	"academic notes in Markdown using the given syllabus unit and retrieved knowledge. " +
	"Start the unit with a '## <unit title>' heading, cover every subtopic the unit lists, " +
	"use bullet points, examples, and ASCII diagrams where they help, and never mention " +
	"the retrieved context or how it was obtained."

const hydeSystemPrompt = "You are a subject-matter expert. Write a dense, factual passage " +
	"that would appear in an ideal textbook answer covering the given topic. Plain prose, " +
	"no preamble, no headings."

// ContextRetriever supplies grounded knowledge-base text for a query.
type ContextRetriever interface {
	Context(ctx context.Context, query, subject string, usePYQ bool, topK int) (string, error)
}

// completer matches ai.Chat and test fakes.
type completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// NotesService orchestrates notes generation: split the syllabus into units,
// and for each unit expand it into a hypothetical answer document, retrieve
// matching knowledge-base text, and generate Markdown notes.
type NotesService struct {
	hyde      completer
	notes     completer
	retriever ContextRetriever
	cache     *cache.NotesCache
}

func NewNotesService(hyde, notes completer, retriever ContextRetriever, notesCache *cache.NotesCache) *NotesService {
	return &NotesService{
		hyde:      hyde,
		notes:     notes,
		retriever: retriever,
		cache:     notesCache,
	}
}

// NotesInput parameterizes one notes-generation request.
type NotesInput struct {
	SyllabusText string
	Subject      string // specific subject or "ALL"
	UsePYQ       bool
	TopK         int
}

// NotesDocument is the assembled Markdown artifact.
type NotesDocument struct {
	Title      string   `json:"title"`
	UnitTitles []string `json:"unit_titles"`
	Markdown   string   `json:"markdown"`
}

// Generate runs the per-unit pipeline sequentially. A unit whose generation
// fails becomes an inline placeholder block; the request itself only fails
// when the syllabus cannot be split at all.
func (s *NotesService) Generate(ctx context.Context, input NotesInput) (*NotesDocument, error) {
	text := strings.TrimSpace(input.SyllabusText)
	if text == "" {
		return nil, ErrEmptySyllabus
	}

	if s.cache != nil {
		var cached NotesDocument
		if ok, err := s.cache.Get(ctx, cacheKey(input), &cached); err != nil {
			log.Printf("notes cache read failed: %v", err)
		} else if ok {
			return &cached, nil
		}
	}

	units := syllabus.SplitUnits(text)
	if len(units) == 0 {
		return nil, ErrEmptySyllabus
	}

	titles := make([]string, len(units))
	bodies := make([]string, len(units))
	for i, unit := range units {
		titles[i] = unit.Title
		body, err := s.generateUnit(ctx, input, unit)
		if err != nil {
			log.Printf("notes unit %q failed: %v", unit.Title, err)
			body = fmt.Sprintf("## %s\n\n> Notes for this unit could not be generated: %v", unit.Title, err)
		}
		bodies[i] = body
	}

	doc := &NotesDocument{
		Title:      documentTitle(input.Subject),
		UnitTitles: titles,
		Markdown:   assemble(documentTitle(input.Subject), titles, bodies),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(input), doc); err != nil {
			log.Printf("notes cache write failed: %v", err)
		}
	}
	return doc, nil
}

func (s *NotesService) generateUnit(ctx context.Context, input NotesInput, unit syllabus.Unit) (string, error) {
	seed := fmt.Sprintf("Subject: %s\n%s\n%s", input.Subject, unit.Title, unit.Text)
	hydeDoc, err := s.Expand(ctx, seed)
	if err != nil {
		return "", fmt.Errorf("hypothetical document expansion failed: %w", err)
	}

	kbContext, err := s.retriever.Context(ctx, hydeDoc, input.Subject, input.UsePYQ, input.TopK)
	if err != nil {
		return "", fmt.Errorf("retrieve context failed: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Syllabus unit: %s\n%s\n\nRetrieved knowledge:\n%s\n\nWrite the complete Markdown notes for this unit.",
		unit.Title, unit.Text, kbContext,
	)
	notes, err := s.notes.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: notesSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return "", fmt.Errorf("notes generation failed: %w", err)
	}
	return strings.TrimSpace(notes), nil
}

// Expand produces the hypothetical answer document used as a denser
// retrieval query than the raw unit text.
func (s *NotesService) Expand(ctx context.Context, topic string) (string, error) {
	out, err := s.hyde.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: hydeSystemPrompt},
		{Role: "user", Content: topic},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParseTopics asks the generation service to list the discrete topics a
// syllabus covers, one per line.
func (s *NotesService) ParseTopics(ctx context.Context, syllabusText string) ([]string, error) {
	text := strings.TrimSpace(syllabusText)
	if text == "" {
		return nil, ErrEmptySyllabus
	}
	out, err := s.hyde.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: "Extract the distinct topics from the syllabus below. Reply with one topic per line, nothing else."},
		{Role: "user", Content: text},
	})
	if err != nil {
		return nil, fmt.Errorf("parse topics failed: %w", err)
	}

	var topics []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			topics = append(topics, line)
		}
	}
	return topics, nil
}

func documentTitle(subject string) string {
	if subject != "" && !strings.EqualFold(subject, "ALL") {
		return subject + " - Generated Notes"
	}
	return "Generated Notes"
}

// assemble builds the final document: title, an index of unit titles, then
// each unit body separated by horizontal rules, in original unit order.
func assemble(title string, unitTitles, bodies []string) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")

	b.WriteString("## Index\n\n")
	for i, t := range unitTitles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString("\n")

	for i, body := range bodies {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(body)
	}
	return b.String()
}

func cacheKey(input NotesInput) string {
	return cache.NotesKey(input.SyllabusText, input.Subject, input.UsePYQ, input.TopK)
}
