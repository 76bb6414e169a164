package api

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // empty disables authentication
	// MaxBodySize caps request bodies and encoded responses. Zero means unlimited.
	MaxBodySize     int
	NullableStrings bool
}

// ArchiveStore is the subset of storage.Archive the server uses.
type ArchiveStore interface {
	Put(layout string, payload []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*storage.Entry, error)
	Delete(id ksuid.KSUID) error
	List(limit int) ([]storage.Entry, error)
	Close() error
}

// DecodeResponse is the result of decoding a payload.
type DecodeResponse struct {
	Layout    string           `json:"layout"`
	Consumed  int              `json:"consumed"`
	Remaining int              `json:"remaining"`
	Records   []*layout.Record `json:"records"`
}

// ArchiveEntryResponse describes one archived payload.
type ArchiveEntryResponse struct {
	ID       string    `json:"id"`
	Layout   string    `json:"layout"`
	Captured time.Time `json:"captured"`
	Size     int       `json:"size"`
}

// ArchiveDecodedResponse is an archived payload with its decoded records.
type ArchiveDecodedResponse struct {
	ArchiveEntryResponse
	Remaining int              `json:"remaining"`
	Records   []*layout.Record `json:"records"`
}

func entryResponse(e storage.Entry) ArchiveEntryResponse {
	return ArchiveEntryResponse{
		ID:       e.ID.String(),
		Layout:   e.Layout,
		Captured: e.Captured,
		Size:     e.Size,
	}
}
