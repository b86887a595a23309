package out_test

import (
	"testing"

	notesout "firedesk/internal/modules/notes/adapter/out"
)

func TestEmbeddedSampleNotesParse(t *testing.T) {
	t.Parallel()
	notes, err := notesout.NewEmbeddedSampleSource().Notes()
	if err != nil {
		t.Fatalf("parse embedded notes: %v", err)
	}
	if len(notes) == 0 {
		t.Fatalf("expected bundled sample notes")
	}
	for _, n := range notes {
		if n.Title == "" {
			t.Fatalf("sample note without title: %+v", n)
		}
	}
}

func TestYAMLSampleSourceRejectsUntitledNote(t *testing.T) {
	t.Parallel()
	src := notesout.NewYAMLSampleSource([]byte("notes:\n  - content: orphan\n"))
	if _, err := src.Notes(); err == nil {
		t.Fatalf("expected validation error")
	}
}
