// Package batch executes independent create/edit operations against the
// remote content store, sequentially or through a bounded parallel
// backend, and aggregates the per-operation outcomes into a report. The
// coordinator is the only component that executes operations; operations
// themselves are inert descriptions until then.
package batch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/pkg/doc"
	"github.com/walteh/presspatch/pkg/edit"
	"github.com/walteh/presspatch/pkg/remote"
)

// Kind distinguishes the two operation shapes.
type Kind int

const (
	// KindCreate creates a new remote document.
	KindCreate Kind = iota
	// KindEdit fetches a document fresh, applies one edit request, and
	// writes the result back.
	KindEdit
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindEdit:
		return "edit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operation is one independent unit of remote work. Operations in a
// batch may not observe one another's outcomes.
type Operation struct {
	// ID is the caller-supplied identifier the report is keyed by.
	ID   string
	Kind Kind

	// Fields describes the document to create (KindCreate).
	Fields remote.Fields

	// TargetID and Request describe the edit (KindEdit).
	TargetID string
	Request  edit.Request
}

// NewCreate builds a create operation.
func NewCreate(id string, fields remote.Fields) Operation {
	return Operation{ID: id, Kind: KindCreate, Fields: fields}
}

// NewEdit builds an edit operation against an existing remote document.
func NewEdit(id string, targetID string, req edit.Request) Operation {
	return Operation{ID: id, Kind: KindEdit, TargetID: targetID, Request: req}
}

// Execute runs the operation against a gateway session and returns a
// human-readable detail string. It performs at most one remote write;
// failures before the write leave no remote state change.
func (op Operation) Execute(ctx context.Context, gw remote.Gateway) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("op", op.ID).Stringer("kind", op.Kind).Msg("executing operation")

	switch op.Kind {
	case KindCreate:
		id, err := gw.CreateDocument(ctx, op.Fields)
		if err != nil {
			return "", err
		}
		return "created " + id, nil

	case KindEdit:
		raw, err := gw.FetchDocument(ctx, op.TargetID)
		if err != nil {
			return "", err
		}

		result := edit.Mutate(doc.Parse(raw), op.Request)
		switch result.Status {
		case edit.StatusApplied:
			// Fall through to the write below.
		case edit.StatusNoMatch:
			return "", errors.Errorf("document %s: pattern not found at requested location", op.TargetID)
		case edit.StatusInvalidLocation:
			return "", errors.Errorf("document %s: requested line is outside the document", op.TargetID)
		default:
			return "", errors.Errorf("document %s: malformed edit request", op.TargetID)
		}

		if op.Request.PreviewOnly {
			return fmt.Sprintf("preview: %d replacement(s) on document %s", result.ReplacementsMade, op.TargetID), nil
		}
		if err := gw.WriteDocument(ctx, op.TargetID, result.After.Render()); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d replacement(s) on document %s", result.ReplacementsMade, op.TargetID), nil

	default:
		return "", errors.Errorf("unknown operation kind %d", int(op.Kind))
	}
}
