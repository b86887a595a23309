package dto

type AuthWriteInput struct {
	UID string
}

type WriteOutput struct {
	ID     string
	Queued bool
}

type ProbeOutput struct {
	Reachable bool
}

type SeedOutput struct {
	Written int
}

type NoteOutput struct {
	ID      string
	Title   string
	Content string
	Fields  map[string]any
}

type QueueOutput struct {
	Enabled  bool
	Pending  int
	Rejected int
}

type FlushOutput struct {
	Replayed  int
	Remaining int
	Rejected  int
}
