package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/pkg/remote"
)

// NewCreateCommand creates a single remote document.
func NewCreateCommand(newOpts OptsFunc) *cobra.Command {
	var (
		content   string
		docStatus string
		docKind   string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "create one remote document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := newOpts(ctx)
			if err != nil {
				return err
			}
			if content == "" {
				return errors.New("--content is required")
			}

			session, err := o.Dialer.Dial(ctx)
			if err != nil {
				return errors.Errorf("connecting to %s: %w", o.Server.Host, err)
			}
			defer session.Close()

			id, err := session.CreateDocument(ctx, remote.Fields{
				Title:   args[0],
				Content: content,
				Status:  docStatus,
				Kind:    docKind,
			})
			if err != nil {
				return errors.Errorf("creating document: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s: %s\n", docKind, id, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "document content")
	cmd.Flags().StringVar(&docStatus, "status", "publish", "document status (publish, draft, private)")
	cmd.Flags().StringVar(&docKind, "type", "post", "document type (post, page)")

	return cmd
}
