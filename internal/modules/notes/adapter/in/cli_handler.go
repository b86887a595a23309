package in

import (
	"context"

	"firedesk/internal/modules/notes/dto"
	notesin "firedesk/internal/modules/notes/port/in"
)

type CLIHandler struct {
	usecase notesin.Usecase
}

func NewCLIHandler(usecase notesin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AuthenticatedWrite(ctx context.Context, uid string) (dto.WriteOutput, error) {
	return h.usecase.AuthenticatedWrite(ctx, dto.AuthWriteInput{UID: uid})
}

func (h CLIHandler) Probe(ctx context.Context) (dto.ProbeOutput, error) {
	return h.usecase.Probe(ctx)
}

func (h CLIHandler) SeedSampleData(ctx context.Context) (dto.SeedOutput, error) {
	return h.usecase.SeedSampleData(ctx)
}

func (h CLIHandler) FetchNotes(ctx context.Context) ([]dto.NoteOutput, error) {
	return h.usecase.FetchNotes(ctx)
}

func (h CLIHandler) QueueStatus(ctx context.Context) (dto.QueueOutput, error) {
	return h.usecase.QueueStatus(ctx)
}

func (h CLIHandler) Flush(ctx context.Context) (dto.FlushOutput, error) {
	return h.usecase.Flush(ctx)
}
