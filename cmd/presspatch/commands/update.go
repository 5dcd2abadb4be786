// Package commands holds the cobra subcommands for presspatch.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/cmd/presspatch/opts"
	"github.com/walteh/presspatch/pkg/doc"
	"github.com/walteh/presspatch/pkg/edit"
)

// OptsFunc builds the shared command dependencies once flags are parsed.
type OptsFunc func(ctx context.Context) (*opts.RootOpts, error)

// NewUpdateCommand edits one remote document with a single precise
// replacement.
func NewUpdateCommand(newOpts OptsFunc) *cobra.Command {
	var (
		line      int
		nth       int
		startLine int
		endLine   int
		preview   bool
	)

	cmd := &cobra.Command{
		Use:   "update <document-id> <find-text> <replace-text>",
		Short: "replace text within one remote document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := newOpts(ctx)
			if err != nil {
				return err
			}

			locator, err := pickLocator(line, nth, startLine, endLine)
			if err != nil {
				return err
			}
			req := edit.Request{
				Pattern:     args[1],
				Replacement: args[2],
				Locator:     locator,
				PreviewOnly: preview,
			}

			session, err := o.Dialer.Dial(ctx)
			if err != nil {
				return errors.Errorf("connecting to %s: %w", o.Server.Host, err)
			}
			defer session.Close()

			raw, err := session.FetchDocument(ctx, args[0])
			if err != nil {
				return errors.Errorf("fetching document %s: %w", args[0], err)
			}

			result := edit.Preview(doc.Parse(raw), req)
			o.Status.ShowPreview(result)

			switch result.Status {
			case edit.StatusApplied:
			case edit.StatusNoMatch:
				return nil
			case edit.StatusInvalidLocation:
				return errors.Errorf("requested line is outside the document (%d lines)", result.Before.NumLines())
			default:
				return errors.New("malformed edit request")
			}
			if preview {
				return nil
			}

			if err := session.WriteDocument(ctx, args[0], result.After.Render()); err != nil {
				return errors.Errorf("writing document %s: %w", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "replace only within this line")
	cmd.Flags().IntVar(&nth, "nth", 0, "replace only the nth occurrence")
	cmd.Flags().IntVar(&startLine, "start-line", 0, "replace within a line range (with --end-line)")
	cmd.Flags().IntVar(&endLine, "end-line", 0, "replace within a line range (with --start-line)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show changes without applying them")

	return cmd
}

// pickLocator maps the positional flags onto a locator; none set means
// replace everywhere.
func pickLocator(line, nth, startLine, endLine int) (edit.Locator, error) {
	set := 0
	if line != 0 {
		set++
	}
	if nth != 0 {
		set++
	}
	if startLine != 0 || endLine != 0 {
		set++
	}
	if set > 1 {
		return edit.Locator{}, errors.New("--line, --nth and --start-line/--end-line are mutually exclusive")
	}
	switch {
	case line != 0:
		return edit.AtLine(line), nil
	case nth != 0:
		return edit.NthOccurrence(nth), nil
	case startLine != 0 || endLine != 0:
		return edit.LineRange(startLine, endLine), nil
	default:
		return edit.All(), nil
	}
}
