package in

import (
	"context"

	"firedesk/internal/modules/notes/dto"
)

type Usecase interface {
	AuthenticatedWrite(ctx context.Context, input dto.AuthWriteInput) (dto.WriteOutput, error)
	Probe(ctx context.Context) (dto.ProbeOutput, error)
	SeedSampleData(ctx context.Context) (dto.SeedOutput, error)
	FetchNotes(ctx context.Context) ([]dto.NoteOutput, error)
	QueueStatus(ctx context.Context) (dto.QueueOutput, error)
	Flush(ctx context.Context) (dto.FlushOutput, error)
}
