package partition

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// mockRunner answers per command name; unknown commands fail.
type mockRunner struct {
	pdftotext    string
	pdftotextErr error
	imageList    string
	imageListErr error
	calls        []string
}

func (m *mockRunner) Run(_ context.Context, name string, _ ...string) ([]byte, error) {
	m.calls = append(m.calls, name)
	switch name {
	case "pdftotext":
		return []byte(m.pdftotext), m.pdftotextErr
	case "pdfimages":
		return []byte(m.imageList), m.imageListErr
	default:
		return nil, errors.New("unknown command " + name)
	}
}

const samplePDFText = "Introduction\n\n" +
	"Widgets are small interchangeable parts used\nthroughout the assembly.\n\n" +
	"name        qty    price\nwidget      4      1.50\ngadget      1      9.99\n\n" +
	"42\n" +
	"\f" +
	"Gadgets combine several widgets into one unit.\n" +
	"\f"

const sampleImageList = "page   num  type   width height color comp bpc  enc interp  object ID x-ppi y-ppi size ratio\n" +
	"--------------------------------------------------------------------------------------------\n" +
	"   2     0 image     640   480  rgb     3   8  jpeg   no        12  0   144   144 37.1K 4.1%\n"

func newTestPoppler(r CommandRunner) *Poppler {
	return NewPoppler(r, zap.NewNop())
}

func TestPartition_SegmentsAndClassifies(t *testing.T) {
	runner := &mockRunner{pdftotext: samplePDFText}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "docs/widgets.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, domain.ChunkText, chunks[0].Type)
	assert.Equal(t, "Introduction", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].Page)

	assert.Equal(t, domain.ChunkText, chunks[1].Type)
	assert.Equal(t, "Widgets are small interchangeable parts used\nthroughout the assembly.", chunks[1].Text)

	assert.Equal(t, domain.ChunkTable, chunks[2].Type)
	assert.Contains(t, chunks[2].Text, "widget      4      1.50", "table layout must be preserved")

	assert.Equal(t, domain.ChunkText, chunks[3].Type)
	assert.Equal(t, 2, chunks[3].Page)

	for i, c := range chunks {
		assert.Equal(t, i, c.Sequence, "chunks must be sequenced in document order")
		assert.Equal(t, "docs/widgets.pdf", c.Source)
	}
}

func TestPartition_DropsNonIndexableBlocks(t *testing.T) {
	runner := &mockRunner{pdftotext: "41\n\n-----\n\nReal sentence here.\n\f"}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "a.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Real sentence here.", chunks[0].Text)
}

func TestPartition_ImageChunks(t *testing.T) {
	runner := &mockRunner{
		pdftotext: "Page one text.\n\fPage two text.\n\f",
		imageList: sampleImageList,
	}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "a.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	img := chunks[2]
	assert.Equal(t, domain.ChunkImage, img.Type)
	assert.Equal(t, 2, img.Page)
	assert.Equal(t, "Embedded jpeg image 0 on page 2, 640x480 pixels.", img.Text)
}

func TestPartition_ImageOnlyDocument(t *testing.T) {
	// Scanned PDFs often carry no extractable text: pdftotext emits only a
	// form feed while pdfimages still reports content.
	runner := &mockRunner{
		pdftotext: "\f",
		imageList: sampleImageList,
	}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "scan.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, domain.ChunkImage, chunks[0].Type)
	assert.Equal(t, 2, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Sequence)
}

func TestPartition_ImageBeyondTextPagesKeptAtTail(t *testing.T) {
	runner := &mockRunner{
		pdftotext: "Only one text page.\n\f",
		imageList: sampleImageList, // image sits on page 2
	}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "a.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, domain.ChunkText, chunks[0].Type)
	assert.Equal(t, domain.ChunkImage, chunks[1].Type)
	assert.Equal(t, 1, chunks[1].Sequence)
}

func TestPartition_ImageInventoryFailureDegrades(t *testing.T) {
	runner := &mockRunner{
		pdftotext:    "Some text.\n\f",
		imageListErr: errors.New("pdfimages: not found"),
	}
	chunks, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "a.pdf")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestPartition_EmptyDocument(t *testing.T) {
	_, err := newTestPoppler(&mockRunner{}).Partition(context.Background(), nil, "a.pdf")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestPartition_ExtractorFailure(t *testing.T) {
	runner := &mockRunner{pdftotextErr: errors.New("pdftotext: damaged file")}
	_, err := newTestPoppler(runner).Partition(context.Background(), []byte("junk"), "a.pdf")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestPartition_NothingIndexable(t *testing.T) {
	runner := &mockRunner{pdftotext: "1\n\n2\n\n3\n\f"}
	_, err := newTestPoppler(runner).Partition(context.Background(), []byte("%PDF"), "a.pdf")
	assert.ErrorIs(t, err, domain.ErrNoChunks)
}

func TestLooksTabular(t *testing.T) {
	cases := []struct {
		name  string
		block string
		want  bool
	}{
		{"aligned columns", "a        b        c\n1        2        3", true},
		{"single line", "a        b        c", false},
		{"prose", "This is a sentence.\nAnd another one follows it.", false},
		{"mostly columnar", "name    qty\nwidget    4\ntrailing prose line", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, looksTabular(tc.block))
		})
	}
}

func TestNormalizeBlock_CollapsesProseSpacing(t *testing.T) {
	got := normalizeBlock("Widgets   are    parts.")
	assert.Equal(t, "Widgets are parts.", got)
}
