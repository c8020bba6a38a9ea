package service

import (
	"reflect"
	"testing"

	"gymchat/internal/domain"
)

func TestFormatSourceURI(t *testing.T) {
	cases := []struct {
		name string
		uri  string
		want string
	}{
		{"s3 con extension", "s3://bucket/path/Doc1.pdf", "Doc1"},
		{"s3 con separadores", "s3://bucket/guides/strength_training-basics.pptx", "strength training basics"},
		{"s3 sin path", "s3://bucket", "bucket"},
		{"http con archivo", "https://example.com/docs/routine.pdf", "routine.pdf"},
		{"http solo dominio", "https://example.com/", "example.com"},
		{"path local", "/data/docs/nutrition_guide.md", "nutrition guide"},
		{"path windows", `C:\docs\cardio-plan.txt`, "cardio plan"},
		{"vacio", "", "Unknown source"},
		{"sin formato especial", "manual", "manual"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatSourceURI(tc.uri); got != tc.want {
				t.Fatalf("FormatSourceURI(%q) = %q, want %q", tc.uri, got, tc.want)
			}
		})
	}
}

func TestCitationLabels_DedupPreservesFirstSeenOrder(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{SourceURI: "s3://bucket/path/Doc1.pdf", Score: 0.9},
		{SourceURI: "s3://bucket/other/Doc2.pdf", Score: 0.8},
		{SourceURI: "s3://bucket/path/Doc1.pdf", Score: 0.7},
	}

	got := CitationLabels(chunks)
	want := []string{"Doc1", "Doc2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CitationLabels = %v, want %v", got, want)
	}
}

func TestCitationLabels_DedupAcrossDifferentURIsWithSameLabel(t *testing.T) {
	// Dos locators distintos que formatean a la misma etiqueta colapsan.
	chunks := []domain.RetrievedChunk{
		{SourceURI: "s3://bucket/a/Plan.pdf"},
		{SourceURI: "s3://bucket/b/Plan.docx"},
	}

	got := CitationLabels(chunks)
	if len(got) != 1 || got[0] != "Plan" {
		t.Fatalf("expected single label Plan, got %v", got)
	}
}

func TestCitationLabels_SkipsEmptySourcesAndNeverExceedsInput(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{SourceURI: "", Excerpt: "sin fuente"},
		{SourceURI: "s3://bucket/x/Doc.pdf"},
	}

	got := CitationLabels(chunks)
	if len(got) != 1 {
		t.Fatalf("expected 1 label, got %v", got)
	}
	if len(got) > len(chunks) {
		t.Fatalf("output longer than input")
	}
}

func TestCitationLabels_EmptyInput(t *testing.T) {
	if got := CitationLabels(nil); len(got) != 0 {
		t.Fatalf("expected empty labels, got %v", got)
	}
}
