// Package archive persists committed plans for later retrieval.
//
// Two backends are provided: a file archive for CLI usage and a MongoDB
// archive for server deployments. Records are immutable once stored.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jdalgard/pageplan/pkg/plan"
)

// Record is one archived planning run.
type Record struct {
	ID        string       `json:"id" bson:"_id"`
	Document  string       `json:"document" bson:"document"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	Plan      *plan.Plan   `json:"plan" bson:"plan"`
	Metrics   plan.Metrics `json:"metrics" bson:"metrics"`
}

// NewRecord builds a record with a fresh UUID and the current timestamp.
func NewRecord(document string, p *plan.Plan) Record {
	return Record{
		ID:        uuid.NewString(),
		Document:  document,
		CreatedAt: time.Now().UTC(),
		Plan:      p,
		Metrics:   p.Metrics,
	}
}

// Summary is the listing view of a record, without the plan body.
type Summary struct {
	ID        string       `json:"id" bson:"_id"`
	Document  string       `json:"document" bson:"document"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	Metrics   plan.Metrics `json:"metrics" bson:"metrics"`
}

func (r Record) summary() Summary {
	return Summary{ID: r.ID, Document: r.Document, CreatedAt: r.CreatedAt, Metrics: r.Metrics}
}

// Archive stores and retrieves planning records.
type Archive interface {
	// Put stores a record. Storing an existing ID is an error.
	Put(ctx context.Context, rec Record) error

	// Get retrieves a record by ID. Returns a PLAN_NOT_FOUND error when
	// the ID is unknown.
	Get(ctx context.Context, id string) (Record, error)

	// List returns summaries of all records, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}
