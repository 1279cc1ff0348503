// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/documint/internal/container"
	"github.com/pdiddy/documint/pkg/types"
)

// fakeRuntime records Run calls and echoes a marker plus stdin.
type fakeRuntime struct {
	images  map[string]bool
	pulled  []string
	ran     []string
	args    [][]string
	runErr  error
	silence bool
}

func (f *fakeRuntime) Name() string { return "fake" }

func (f *fakeRuntime) Available(context.Context) bool { return true }

func (f *fakeRuntime) Pull(_ context.Context, image string) error {
	f.pulled = append(f.pulled, image)
	return nil
}

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.images[image] {
		return nil
	}
	return errors.New("missing")
}

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.ran = append(f.ran, image)
	f.args = append(f.args, args)
	if f.runErr != nil {
		return f.runErr
	}
	if f.silence {
		return nil
	}
	data, _ := io.ReadAll(stdin)
	_, _ = stdout.Write(append([]byte("BIN:"), data...))
	return nil
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    types.OutputFormat
		wantErr bool
	}{
		{in: "", want: types.OutputMarkdown},
		{in: "md", want: types.OutputMarkdown},
		{in: "Markdown", want: types.OutputMarkdown},
		{in: "txt", want: types.OutputText},
		{in: " DOCX ", want: types.OutputDocx},
		{in: "pdf", want: types.OutputPDF},
		{in: "rtf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".docx", Extension(types.OutputDocx))
	assert.Equal(t, ".txt", Extension(types.OutputText))
	assert.Equal(t, ".md", Extension("unknown"))
}

func TestRenderPassthroughNeedsNoRuntime(t *testing.T) {
	r := New(nil, types.RenderConfig{})
	r.detect = func(context.Context) (container.Runtime, error) {
		t.Fatal("runtime must not be detected for passthrough formats")
		return nil, nil
	}

	for _, f := range []types.OutputFormat{"", types.OutputMarkdown, types.OutputText} {
		out, err := r.Render(context.Background(), "# Doc", f)
		require.NoError(t, err)
		assert.Equal(t, "# Doc", string(out))
	}
	assert.False(t, NeedsContainer(types.OutputText))
	assert.True(t, NeedsContainer(types.OutputDocx))
}

func TestRenderDocx(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{imagePandoc: true}}
	r := New(rt, types.RenderConfig{})

	out, err := r.Render(context.Background(), "# Doc", types.OutputDocx)
	require.NoError(t, err)
	assert.Equal(t, "BIN:# Doc", string(out))
	assert.Equal(t, []string{imagePandoc}, rt.ran)
	assert.Equal(t, []string{"-f", "markdown", "-t", "docx", "--standalone", "-o", "-"}, rt.args[0])
	assert.Empty(t, rt.pulled)
}

func TestRenderPDFPullsLaTeXImage(t *testing.T) {
	rt := &fakeRuntime{}
	r := New(rt, types.RenderConfig{})

	_, err := r.Render(context.Background(), "# Doc", types.OutputPDF)
	require.NoError(t, err)
	assert.Equal(t, []string{imagePandocLaTeX}, rt.pulled)
	assert.Equal(t, []string{imagePandocLaTeX}, rt.ran)
	assert.Contains(t, rt.args[0], "--pdf-engine=xelatex")
}

func TestRenderImageOverride(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"registry.local/pandoc:3": true}}
	r := New(rt, types.RenderConfig{Image: "registry.local/pandoc:3"})

	_, err := r.Render(context.Background(), "x", types.OutputHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"registry.local/pandoc:3"}, rt.ran)
	assert.Contains(t, rt.args[0], "html5")
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()

	r := New(&fakeRuntime{images: map[string]bool{imagePandoc: true}, runErr: errors.New("exit 1")}, types.RenderConfig{})
	_, err := r.Render(ctx, "x", types.OutputODT)
	assert.ErrorContains(t, err, "converting to odt")

	r = New(&fakeRuntime{images: map[string]bool{imagePandoc: true}, silence: true}, types.RenderConfig{})
	_, err = r.Render(ctx, "x", types.OutputDocx)
	assert.ErrorContains(t, err, "empty docx output")

	_, err = r.Render(ctx, "x", "rtf")
	assert.ErrorContains(t, err, "unsupported output format")

	r = New(nil, types.RenderConfig{})
	r.detect = func(context.Context) (container.Runtime, error) { return nil, errors.New("no container runtime available") }
	_, err = r.Render(ctx, "x", types.OutputDocx)
	assert.ErrorContains(t, err, "no container runtime available")
}
