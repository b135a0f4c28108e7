// Package partition turns raw PDF bytes into an ordered sequence of typed
// chunks. Extraction is delegated to poppler (pdftotext, pdfimages); this
// package only segments and classifies the tool output.
package partition

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Partitioner produces semantically coherent chunks from document bytes.
type Partitioner interface {
	Partition(ctx context.Context, doc []byte, source string) ([]domain.Chunk, error)
}

// Poppler shells out to pdftotext and pdfimages.
type Poppler struct {
	runner CommandRunner
	logger *zap.Logger
}

// NewPoppler creates a poppler-backed partitioner.
func NewPoppler(runner CommandRunner, logger *zap.Logger) *Poppler {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Poppler{runner: runner, logger: logger}
}

// InstallInstructions describes how to install the required tools.
func InstallInstructions() string {
	return "partitioning requires poppler (pdftotext, pdfimages): " +
		"brew install poppler / apt install poppler-utils"
}

// Partition extracts text, tables, and image descriptions from a PDF.
// A parse failure aborts the whole document: no partial chunk list is
// returned. A parseable document with nothing to index yields ErrNoChunks.
func (p *Poppler) Partition(ctx context.Context, doc []byte, source string) ([]domain.Chunk, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty document %s", domain.ErrParseFailure, source)
	}

	path, cleanup, err := writeTemp(doc)
	if err != nil {
		return nil, fmt.Errorf("stage document: %w", err)
	}
	defer cleanup()

	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailure, source, err)
	}

	pages := splitPages(string(out))
	chunks := make([][]domain.Chunk, len(pages))
	for i, page := range pages {
		chunks[i] = segmentPage(page, i+1, source)
	}

	// Image inventory is best-effort: a missing pdfimages binary degrades to
	// text-only extraction rather than failing the document.
	images, err := p.listImages(ctx, path, source)
	if err != nil {
		p.logger.Warn("image inventory failed, continuing without image chunks",
			zap.String("source", source), zap.Error(err))
	}
	// An image-only PDF yields no text pages at all, so images whose page
	// falls outside the text layout are kept at the tail, not dropped.
	var trailing []domain.Chunk
	for _, img := range images {
		if img.Page >= 1 && img.Page <= len(chunks) {
			chunks[img.Page-1] = append(chunks[img.Page-1], img)
		} else {
			trailing = append(trailing, img)
		}
	}

	var ordered []domain.Chunk
	for _, pageChunks := range chunks {
		ordered = append(ordered, pageChunks...)
	}
	ordered = append(ordered, trailing...)
	for i := range ordered {
		ordered[i].Sequence = i
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoChunks, source)
	}
	return ordered, nil
}

// listImages parses `pdfimages -list` output into image-description chunks.
func (p *Poppler) listImages(ctx context.Context, path, source string) ([]domain.Chunk, error) {
	out, err := p.runner.Run(ctx, "pdfimages", "-list", path)
	if err != nil {
		return nil, err
	}

	var images []domain.Chunk
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		// page num type width height color ...
		if len(fields) < 5 || fields[2] != "image" {
			continue
		}
		page, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		num := fields[1]
		width, height := fields[3], fields[4]
		enc := ""
		if len(fields) >= 9 {
			enc = fields[8] + " "
		}
		images = append(images, domain.Chunk{
			Source: source,
			Type:   domain.ChunkImage,
			Page:   page,
			Text:   fmt.Sprintf("Embedded %simage %s on page %d, %sx%s pixels.", enc, num, page, width, height),
		})
	}
	return images, nil
}

// splitPages splits pdftotext output on form feeds.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed; drop the empty tail
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// segmentPage splits one page into blank-line-delimited blocks and
// classifies each as text or table.
func segmentPage(page string, pageNum int, source string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, block := range splitBlocks(page) {
		text := strings.TrimRight(block, " \n")
		if !indexable(text) {
			continue
		}
		chunkType := domain.ChunkText
		if looksTabular(text) {
			chunkType = domain.ChunkTable
		}
		chunks = append(chunks, domain.Chunk{
			Source: source,
			Type:   chunkType,
			Page:   pageNum,
			Text:   normalizeBlock(text),
		})
	}
	return chunks
}

func splitBlocks(page string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(page, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// indexable rejects blocks with no letters (page numbers, rules, noise).
func indexable(block string) bool {
	for _, r := range block {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// looksTabular reports whether a block reads as an aligned multi-column
// table: at least two lines, most of which contain wide internal gaps
// (the -layout flag preserves column spacing).
func looksTabular(block string) bool {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return false
	}
	columnar := 0
	for _, line := range lines {
		if strings.Contains(strings.TrimSpace(line), "   ") {
			columnar++
		}
	}
	return columnar*2 >= len(lines)
}

// normalizeBlock collapses intra-line runs of spaces in text blocks while
// preserving line structure. Table blocks keep their layout verbatim.
func normalizeBlock(block string) string {
	if looksTabular(block) {
		return block
	}
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

func writeTemp(doc []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "docdex-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
