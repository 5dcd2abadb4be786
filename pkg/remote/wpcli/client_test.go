package wpcli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
)

// scriptedRunner returns canned output and records the commands it was
// asked to run.
type scriptedRunner struct {
	stdout string
	stderr string
	err    error
	cmds   []string
	closed bool
}

func (r *scriptedRunner) Run(ctx context.Context, cmd string) (string, string, error) {
	r.cmds = append(r.cmds, cmd)
	return r.stdout, r.stderr, r.err
}

func (r *scriptedRunner) Close() error {
	r.closed = true
	return nil
}

func testServer() config.ServerDefinition {
	return config.ServerDefinition{
		Host:     "wp.example.com",
		User:     "deploy",
		WPPath:   "/var/www/html",
		PHPBin:   "php",
		WPCLIBin: "/usr/local/bin/wp",
	}
}

func TestClient_CreateDocument(t *testing.T) {
	runner := &scriptedRunner{stdout: "42\n"}
	client := NewClient(runner, testServer())

	id, err := client.CreateDocument(context.Background(), remote.Fields{
		Title:   "Hello World",
		Content: "body text",
		Status:  "publish",
		Kind:    "post",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	require.Len(t, runner.cmds, 1)
	cmd := runner.cmds[0]
	assert.Contains(t, cmd, "cd /var/www/html && php /usr/local/bin/wp post create")
	assert.Contains(t, cmd, "--post_title='Hello World'")
	assert.Contains(t, cmd, "--post_content='body text'")
	assert.Contains(t, cmd, "--post_status='publish'")
	assert.Contains(t, cmd, "--porcelain")
}

func TestClient_CreateDocument_UnexpectedOutput(t *testing.T) {
	runner := &scriptedRunner{stdout: "Warning: something odd"}
	client := NewClient(runner, testServer())

	_, err := client.CreateDocument(context.Background(), remote.Fields{Title: "t", Content: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected wp-cli output")
}

func TestClient_FetchDocument(t *testing.T) {
	// wp-cli prints the field value followed by its own newline; only
	// that final newline is transport framing, interior ones and a
	// content-owned trailing blank line are kept.
	runner := &scriptedRunner{stdout: "line one\nline two\n"}
	client := NewClient(runner, testServer())

	raw, err := client.FetchDocument(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", raw)
	assert.Contains(t, runner.cmds[0], "post get '7' --field=post_content")

	blank := NewClient(&scriptedRunner{stdout: "body\n\n"}, testServer())
	raw, err = blank.FetchDocument(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "body\n", raw)
}

// echoRunner simulates the remote wp-cli installation: post get prints
// the stored content plus one trailing newline, post update stores the
// quoted value verbatim.
type echoRunner struct {
	stored string
}

func (r *echoRunner) Run(ctx context.Context, cmd string) (string, string, error) {
	if strings.Contains(cmd, "post get") {
		return r.stored + "\n", "", nil
	}
	if strings.Contains(cmd, "post update") {
		marker := "--post_content='"
		start := strings.Index(cmd, marker) + len(marker)
		end := strings.LastIndex(cmd, "'")
		r.stored = strings.ReplaceAll(cmd[start:end], `'\''`, "'")
		return "Success: Updated post 7.", "", nil
	}
	return "", "", assert.AnError
}

func (r *echoRunner) Close() error { return nil }

func TestClient_FetchWriteRoundTrip_Stable(t *testing.T) {
	runner := &echoRunner{stored: "hello world"}
	client := NewClient(runner, testServer())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		raw, err := client.FetchDocument(ctx, "7")
		require.NoError(t, err)
		require.NoError(t, client.WriteDocument(ctx, "7", raw))
	}
	require.Equal(t, "hello world", runner.stored,
		"unchanged content must survive repeated fetch/write cycles byte for byte")
}

func TestClient_FetchDocument_NotFound(t *testing.T) {
	runner := &scriptedRunner{
		stderr: "Error: Could not find the post with ID 999.",
		err:    assert.AnError,
	}
	client := NewClient(runner, testServer())

	_, err := client.FetchDocument(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err), "wp-cli rejection must classify as not-found")
	assert.False(t, remote.IsConnectivity(err))
}

func TestClient_WriteDocument(t *testing.T) {
	runner := &scriptedRunner{stdout: "Success: Updated post 7."}
	client := NewClient(runner, testServer())

	err := client.WriteDocument(context.Background(), "7", "new body")
	require.NoError(t, err)
	assert.Contains(t, runner.cmds[0], "post update '7' --post_content='new body'")
}

func TestClient_ListDocuments(t *testing.T) {
	runner := &scriptedRunner{stdout: `[
  {"ID": 7, "post_name": "hello-world", "post_title": "Hello World"},
  {"ID": 9, "post_name": "news-update", "post_title": "News Update"}
]`}
	client := NewClient(runner, testServer())

	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, remote.DocumentInfo{ID: "7", Slug: "hello-world", Title: "Hello World"}, docs[0])
	assert.Equal(t, remote.DocumentInfo{ID: "9", Slug: "news-update", Title: "News Update"}, docs[1])
	assert.Contains(t, runner.cmds[0], "--format=json")
}

func TestClient_ListDocuments_BadJSON(t *testing.T) {
	runner := &scriptedRunner{stdout: "PHP Fatal error: whoops"}
	client := NewClient(runner, testServer())

	_, err := client.ListDocuments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestClient_GetDocumentMeta(t *testing.T) {
	runner := &scriptedRunner{stdout: `{"ID": 7, "post_title": "Hello", "post_status": "publish"}`}
	client := NewClient(runner, testServer())

	title, err := client.GetDocumentMeta(context.Background(), "7", "post_title")
	require.NoError(t, err)
	assert.Equal(t, "Hello", title)

	_, err = client.GetDocumentMeta(context.Background(), "7", "missing_field")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no field "missing_field"`)
}

func TestClient_Verify(t *testing.T) {
	ok := NewClient(&scriptedRunner{stdout: "WP-CLI 2.10.0\n"}, testServer())
	require.NoError(t, ok.Verify(context.Background()))

	bad := NewClient(&scriptedRunner{stdout: "command not found"}, testServer())
	err := bad.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected wp-cli probe output")
}

func TestClient_Close(t *testing.T) {
	runner := &scriptedRunner{}
	client := NewClient(runner, testServer())
	require.NoError(t, client.Close())
	assert.True(t, runner.closed)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "'plain'"},
		{in: "it's", want: `'it'\''s'`},
		{in: "", want: "''"},
		{in: `a "b" c`, want: `'a "b" c'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quote(tt.in), "quoting %q", tt.in)
	}
}
