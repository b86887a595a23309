package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	CollectionNotes     = "notes"
	CollectionAuthTests = "auth-tests"
	CollectionProbe     = "connection-test"
)

const AuthTestMessage = "Auth test write"

type serverTimestamp struct{}

// ServerTimestamp is a field value the document store replaces with its own
// commit time.
var ServerTimestamp = serverTimestamp{}

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

type Fields map[string]any

type Record struct {
	ID         string
	Collection string
	Fields     Fields
}

// PendingWrite is a write held locally until the store is reachable again.
type PendingWrite struct {
	Seq        int64
	Collection string
	DocID      string
	Fields     Fields
	QueuedAt   time.Time
}

// RejectedWrite is a queued write the store refused for good. It is kept
// aside so it no longer holds back the writes queued after it.
type RejectedWrite struct {
	PendingWrite
	Reason     string
	RejectedAt time.Time
}

type Note struct {
	Title   string   `yaml:"title"`
	Content string   `yaml:"content"`
	Tags    []string `yaml:"tags"`
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("note title is required")
	}
	return nil
}

func (n Note) Fields() Fields {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return Fields{
		"title":     n.Title,
		"content":   n.Content,
		"tags":      tags,
		"createdAt": ServerTimestamp,
		"updatedAt": ServerTimestamp,
	}
}
