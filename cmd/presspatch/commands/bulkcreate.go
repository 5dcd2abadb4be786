package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/cmd/presspatch/opts"
	"github.com/walteh/presspatch/pkg/batch"
	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
)

// NewBulkCreateCommand creates many documents from a JSON/YAML/CSV file
// through the batch coordinator.
func NewBulkCreateCommand(newOpts OptsFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-create <file>",
		Short: "create documents in bulk from a JSON, YAML or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := newOpts(ctx)
			if err != nil {
				return err
			}

			posts, err := config.LoadPosts(ctx, args[0])
			if err != nil {
				return errors.Errorf("loading posts: %w", err)
			}

			ops := make([]batch.Operation, len(posts))
			for i, post := range posts {
				ops[i] = batch.NewCreate(fmt.Sprintf("create-%03d", i+1), remote.Fields{
					Title:   post.Title,
					Content: post.Content,
					Status:  post.Status,
					Kind:    post.Type,
				})
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

// printReport renders every outcome in id order plus the summary line.
// The batch announcement happens before the run, in the command.
func printReport(o *opts.RootOpts, rep *batch.Report) {
	ids := make([]string, 0, len(rep.Results))
	for id := range rep.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		o.Status.LogOutcome(id, rep.Results[id])
	}
	o.Status.EndBatch(rep)
}
