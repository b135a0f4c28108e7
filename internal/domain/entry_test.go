package domain

import (
	"strings"
	"testing"
)

func TestEntryID_Deterministic(t *testing.T) {
	a := EntryID("docs/widgets.pdf", 3)
	b := EntryID("docs/widgets.pdf", 3)
	if a != b {
		t.Errorf("ids differ: %s != %s", a, b)
	}

	if EntryID("docs/widgets.pdf", 4) == a {
		t.Error("sequence must change the id")
	}
	if EntryID("docs/other.pdf", 3) == a {
		t.Error("source must change the id")
	}
}

func TestNewIndexEntry(t *testing.T) {
	chunk := Chunk{
		Source:   "docs/widgets.pdf",
		Sequence: 2,
		Type:     ChunkTable,
		Page:     5,
		Text:     "name  qty\nwidget  4",
	}

	entry := NewIndexEntry(chunk, "table of widget quantities", []float32{1, 2})

	if entry.ID != EntryID(chunk.Source, chunk.Sequence) {
		t.Errorf("id = %q", entry.ID)
	}
	if entry.Metadata[MetaElementType] != "table" || entry.Metadata[MetaPageNumber] != "5" {
		t.Errorf("metadata = %v", entry.Metadata)
	}
	if entry.Metadata[MetaSequenceID] != "2" {
		t.Errorf("sequence_id = %q", entry.Metadata[MetaSequenceID])
	}
	if entry.Metadata[MetaOriginalText] != chunk.Text {
		t.Errorf("original_text = %q", entry.Metadata[MetaOriginalText])
	}
}

func TestChunkPreview_BoundsRunes(t *testing.T) {
	long := strings.Repeat("ä", PreviewRunes+50)
	chunk := Chunk{Text: long}

	preview := chunk.Preview(PreviewRunes)
	if got := len([]rune(preview)); got != PreviewRunes {
		t.Errorf("preview runes = %d, want %d", got, PreviewRunes)
	}

	short := Chunk{Text: "short"}
	if short.Preview(PreviewRunes) != "short" {
		t.Errorf("short preview = %q", short.Preview(PreviewRunes))
	}
}
