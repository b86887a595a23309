package out

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"firedesk/internal/modules/notes/domain"
	notesout "firedesk/internal/modules/notes/port/out"
)

//go:embed sample_notes.yaml
var sampleNotesYAML []byte

type sampleFile struct {
	Notes []domain.Note `yaml:"notes"`
}

type YAMLSampleSource struct {
	data []byte
}

// NewEmbeddedSampleSource serves the notes bundled with the binary.
func NewEmbeddedSampleSource() *YAMLSampleSource {
	return &YAMLSampleSource{data: sampleNotesYAML}
}

func NewYAMLSampleSource(data []byte) *YAMLSampleSource {
	return &YAMLSampleSource{data: data}
}

var _ notesout.SampleSource = (*YAMLSampleSource)(nil)

func (s *YAMLSampleSource) Notes() ([]domain.Note, error) {
	var file sampleFile
	if err := yaml.Unmarshal(s.data, &file); err != nil {
		return nil, fmt.Errorf("parse sample notes: %w", err)
	}
	for i, n := range file.Notes {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("sample note %d: %w", i, err)
		}
	}
	return file.Notes, nil
}
