// Package wpcli implements the remote gateway for WordPress content
// reached over SSH and driven through the wp-cli binary. Command
// construction, quoting and output parsing follow the conventions of
// wp-cli itself: --porcelain for bare ids, --format=json for structured
// listings.
package wpcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
)

func init() {
	remote.RegisterFactory("wpcli", func(ctx context.Context, srv config.ServerDefinition) (remote.Dialer, error) {
		return &Dialer{Server: srv}, nil
	})
}

// Runner executes one shell command on the remote host and returns its
// separated output streams. Implemented by the SSH session in ssh.go
// and by fakes in tests.
type Runner interface {
	Run(ctx context.Context, cmd string) (stdout string, stderr string, err error)
	Close() error
}

// Client drives wp-cli through a Runner. It implements remote.Session.
type Client struct {
	runner Runner
	server config.ServerDefinition
}

// NewClient wraps a runner for the given server definition.
func NewClient(runner Runner, srv config.ServerDefinition) *Client {
	return &Client{runner: runner, server: srv}
}

// Name implements remote.Gateway.
func (c *Client) Name() string {
	return "wpcli"
}

// Close releases the underlying transport session.
func (c *Client) Close() error {
	return c.runner.Close()
}

// Verify probes the remote installation: wp-cli must exist and run.
func (c *Client) Verify(ctx context.Context) error {
	stdout, stderr, err := c.wp(ctx, "--version")
	if err != nil {
		return errors.Errorf("probing wp-cli: %w", err)
	}
	if !strings.Contains(stdout, "WP-CLI") {
		return errors.Errorf("unexpected wp-cli probe output: %s%s", stdout, stderr)
	}
	zerolog.Ctx(ctx).Debug().Str("version", strings.TrimSpace(stdout)).Msg("wp-cli verified")
	return nil
}

// CreateDocument implements remote.Gateway using `wp post create`.
// --porcelain makes wp-cli print only the new id.
func (c *Client) CreateDocument(ctx context.Context, fields remote.Fields) (string, error) {
	args := []string{"post", "create",
		"--post_title=" + quote(fields.Title),
		"--post_content=" + quote(fields.Content),
		"--porcelain",
	}
	if fields.Status != "" {
		args = append(args, "--post_status="+quote(fields.Status))
	}
	if fields.Kind != "" {
		args = append(args, "--post_type="+quote(fields.Kind))
	}

	stdout, stderr, err := c.wp(ctx, args...)
	if err != nil {
		return "", errors.Errorf("creating document: %w", err)
	}
	id := strings.TrimSpace(stdout)
	if _, convErr := strconv.Atoi(id); convErr != nil {
		return "", errors.Errorf("creating document: unexpected wp-cli output %q (stderr: %s)", id, stderr)
	}
	return id, nil
}

// FetchDocument implements remote.Gateway using `wp post get`. wp-cli
// appends one newline to --field output; that newline belongs to the
// transport, not the content, and is trimmed so a fetch/write cycle of
// unchanged content stays byte-identical.
func (c *Client) FetchDocument(ctx context.Context, id string) (string, error) {
	stdout, stderr, err := c.wp(ctx, "post", "get", quote(id), "--field=post_content")
	if err != nil {
		if isNotFoundOutput(stderr) {
			return "", errors.Errorf("fetching document %s: %w", id, remote.ErrNotFound)
		}
		return "", errors.Errorf("fetching document %s: %w", id, err)
	}
	return strings.TrimSuffix(stdout, "\n"), nil
}

// WriteDocument implements remote.Gateway using `wp post update`.
func (c *Client) WriteDocument(ctx context.Context, id string, raw string) error {
	_, stderr, err := c.wp(ctx, "post", "update", quote(id), "--post_content="+quote(raw))
	if err != nil {
		if isNotFoundOutput(stderr) {
			return errors.Errorf("writing document %s: %w", id, remote.ErrNotFound)
		}
		return errors.Errorf("writing document %s: %w", id, err)
	}
	return nil
}

// ListDocuments implements remote.Gateway using `wp post list
// --format=json`, parsed with gjson.
func (c *Client) ListDocuments(ctx context.Context) ([]remote.DocumentInfo, error) {
	stdout, _, err := c.wp(ctx, "post", "list", "--fields=ID,post_name,post_title", "--format=json")
	if err != nil {
		return nil, errors.Errorf("listing documents: %w", err)
	}
	if !gjson.Valid(stdout) {
		return nil, errors.Errorf("listing documents: invalid JSON from wp-cli: %.100s", stdout)
	}

	var docs []remote.DocumentInfo
	gjson.Parse(stdout).ForEach(func(_, item gjson.Result) bool {
		docs = append(docs, remote.DocumentInfo{
			ID:    item.Get("ID").String(),
			Slug:  item.Get("post_name").String(),
			Title: item.Get("post_title").String(),
		})
		return true
	})
	return docs, nil
}

// GetDocumentMeta fetches one field of a document's metadata via
// --format=json (title, status, and friends).
func (c *Client) GetDocumentMeta(ctx context.Context, id string, field string) (string, error) {
	stdout, stderr, err := c.wp(ctx, "post", "get", quote(id), "--format=json")
	if err != nil {
		if isNotFoundOutput(stderr) {
			return "", errors.Errorf("fetching document %s: %w", id, remote.ErrNotFound)
		}
		return "", errors.Errorf("fetching document %s: %w", id, err)
	}
	value := gjson.Get(stdout, field)
	if !value.Exists() {
		return "", errors.Errorf("document %s has no field %q", id, field)
	}
	return value.String(), nil
}

// wp runs one wp-cli command inside the WordPress directory.
func (c *Client) wp(ctx context.Context, args ...string) (string, string, error) {
	cmd := fmt.Sprintf("cd %s && %s %s %s",
		c.server.WPPath, c.server.PHPBin, c.server.WPCLIBin, strings.Join(args, " "))
	zerolog.Ctx(ctx).Debug().Str("args", strings.Join(args, " ")).Msg("executing wp-cli")
	return c.runner.Run(ctx, cmd)
}

// quote single-quotes a value for the remote shell. An embedded single
// quote closes the quoting, emits an escaped quote, and reopens it.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// isNotFoundOutput recognizes wp-cli's item-level rejection messages.
func isNotFoundOutput(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "could not find") ||
		strings.Contains(lower, "invalid post id") ||
		strings.Contains(lower, "not found")
}
