package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"firedesk/internal/modules/notes/domain"
	"firedesk/internal/modules/notes/dto"
	notesin "firedesk/internal/modules/notes/port/in"
	notesout "firedesk/internal/modules/notes/port/out"
	"firedesk/internal/modules/notes/service"
	apperrors "firedesk/internal/platform/errors"
)

type Interactor struct {
	svc     *service.NotesService
	samples notesout.SampleSource
	queue   notesout.QueueController
	logger  *slog.Logger
}

// NewInteractor wires the notes usecase. queue may be nil when the store
// has no offline queue at all.
func NewInteractor(svc *service.NotesService, samples notesout.SampleSource, queue notesout.QueueController, logger *slog.Logger) notesin.Usecase {
	return &Interactor{svc: svc, samples: samples, queue: queue, logger: logger}
}

func (i *Interactor) AuthenticatedWrite(ctx context.Context, input dto.AuthWriteInput) (dto.WriteOutput, error) {
	record, queued, err := i.svc.AuthenticatedWrite(ctx, input.UID)
	if err != nil {
		return dto.WriteOutput{}, err
	}
	i.logger.Info("authenticated write", "collection", record.Collection, "id", record.ID, "queued", queued)
	return dto.WriteOutput{ID: record.ID, Queued: queued}, nil
}

func (i *Interactor) Probe(ctx context.Context) (dto.ProbeOutput, error) {
	ok, err := i.svc.Probe(ctx)
	if err != nil {
		return dto.ProbeOutput{}, err
	}
	return dto.ProbeOutput{Reachable: ok}, nil
}

func (i *Interactor) SeedSampleData(ctx context.Context) (dto.SeedOutput, error) {
	notes, err := i.samples.Notes()
	if err != nil {
		return dto.SeedOutput{}, err
	}
	n, err := i.svc.Seed(ctx, notes)
	if err != nil {
		return dto.SeedOutput{Written: n}, err
	}
	i.logger.Info("sample data seeded", "notes", n)
	return dto.SeedOutput{Written: n}, nil
}

// FetchNotes returns every note and logs the full payload.
func (i *Interactor) FetchNotes(ctx context.Context) ([]dto.NoteOutput, error) {
	records, err := i.svc.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NoteOutput, 0, len(records))
	for _, r := range records {
		out = append(out, toNoteOutput(r))
	}
	i.logger.Info("fetched notes", "count", len(out), "notes", out)
	return out, nil
}

func (i *Interactor) QueueStatus(ctx context.Context) (dto.QueueOutput, error) {
	if i.queue == nil || !i.queue.QueueEnabled() {
		return dto.QueueOutput{}, nil
	}
	n, err := i.queue.PendingCount(ctx)
	if err != nil {
		return dto.QueueOutput{}, err
	}
	rejected, err := i.queue.RejectedCount(ctx)
	if err != nil {
		return dto.QueueOutput{}, err
	}
	return dto.QueueOutput{Enabled: true, Pending: n, Rejected: rejected}, nil
}

func (i *Interactor) Flush(ctx context.Context) (dto.FlushOutput, error) {
	if i.queue == nil {
		return dto.FlushOutput{}, apperrors.ErrQueueDisabled
	}
	replayed, err := i.queue.Flush(ctx)
	out := dto.FlushOutput{Replayed: replayed}
	if n, perr := i.queue.PendingCount(ctx); perr == nil {
		out.Remaining = n
	} else if !errors.Is(perr, apperrors.ErrQueueDisabled) && err == nil {
		err = perr
	}
	if n, rerr := i.queue.RejectedCount(ctx); rerr == nil {
		out.Rejected = n
	}
	return out, err
}

func toNoteOutput(r domain.Record) dto.NoteOutput {
	return dto.NoteOutput{
		ID:      r.ID,
		Title:   stringField(r.Fields, "title"),
		Content: stringField(r.Fields, "content"),
		Fields:  r.Fields,
	}
}

func stringField(f domain.Fields, key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
