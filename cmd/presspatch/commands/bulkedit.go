package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/pkg/batch"
	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
)

// NewBulkEditCommand applies edit specs from a JSON/YAML file to many
// documents through the batch coordinator. Targets are named by id or
// selected with a glob over document slugs.
func NewBulkEditCommand(newOpts OptsFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-edit <file>",
		Short: "apply edits in bulk from a JSON or YAML edit spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := newOpts(ctx)
			if err != nil {
				return err
			}

			specs, err := config.LoadEditSpecs(ctx, args[0])
			if err != nil {
				return errors.Errorf("loading edits: %w", err)
			}

			ops, err := buildEditOperations(ctx, o.Dialer, specs)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				return errors.New("no documents matched the edit specs")
			}

			o.Status.StartBatch(len(ops))
			rep := o.Runner.RunBatch(ctx, ops, o.Policy)
			printReport(o, rep)
			if rep.Failed > 0 {
				return errors.Errorf("%d of %d operations failed", rep.Failed, len(ops))
			}
			return nil
		},
	}
	return cmd
}

// buildEditOperations expands each spec into one operation per target
// document. Slug globs need a listing, so a short-lived session is
// dialed only when at least one spec selects by glob.
func buildEditOperations(ctx context.Context, dialer remote.Dialer, specs []config.EditSpec) ([]batch.Operation, error) {
	var listing []remote.DocumentInfo
	needsListing := false
	for _, spec := range specs {
		if spec.SlugGlob != "" && len(spec.Targets) == 0 {
			needsListing = true
			break
		}
	}
	if needsListing {
		session, err := dialer.Dial(ctx)
		if err != nil {
			return nil, errors.Errorf("connecting to list documents: %w", err)
		}
		defer session.Close()
		listing, err = session.ListDocuments(ctx)
		if err != nil {
			return nil, errors.Errorf("listing documents: %w", err)
		}
	}

	var ops []batch.Operation
	for i, spec := range specs {
		req, err := spec.Request()
		if err != nil {
			return nil, errors.Errorf("edit %d: %w", i, err)
		}

		targets := spec.Targets
		if len(targets) == 0 {
			for _, info := range listing {
				if spec.MatchesSlug(info.Slug) {
					targets = append(targets, info.ID)
				}
			}
		}

		for _, target := range targets {
			id := fmt.Sprintf("edit-%03d-%s", i+1, target)
			ops = append(ops, batch.NewEdit(id, target, req))
		}
	}
	return ops, nil
}
