package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
	th "github.com/desertthunder/newspet/internal/testing"
)

func testReport() *ClassificationReport {
	return &ClassificationReport{
		ID:     42,
		Source: "headline.txt",
		Result: bayes.Classification{
			Label: "interesting",
			Scores: []bayes.LabelScore{
				{Label: "interesting", Probability: 0.75},
				{Label: "uninteresting", Probability: 0.25},
			},
		},
	}
}

func testRecords() []models.RecordInfo {
	return []models.RecordInfo{
		{ID: 1, HasPayload: true, PayloadSize: 2048},
		{ID: 2},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ClassificationToCSV", func(t *testing.T) {
		data, err := ClassificationToCSV(testReport())
		if err != nil {
			t.Fatalf("ClassificationToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines: %s", len(lines), data)
		}
		if lines[0] != "Classifier,Label,Probability" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "42,interesting,0.750000" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
	})

	t.Run("ClassificationToMarkdown", func(t *testing.T) {
		data, err := ClassificationToMarkdown(testReport())
		if err != nil {
			t.Fatalf("ClassificationToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# Classifier 42", "**Source**: headline.txt", "**Label**: interesting", "| interesting | 75.00% |", "| uninteresting | 25.00% |"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ClassificationToText", func(t *testing.T) {
		data, err := ClassificationToText(testReport())
		if err != nil {
			t.Fatalf("ClassificationToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Classifier 42", "Source: headline.txt", "interesting", "75.00%", "25.00%"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ClassificationWithoutSource", func(t *testing.T) {
		r := testReport()
		r.Source = ""

		data, _ := ClassificationToMarkdown(r)
		if strings.Contains(string(data), "Source") {
			t.Errorf("Markdown should omit empty source, got: %s", data)
		}
	})

	t.Run("RecordsToCSV", func(t *testing.T) {
		data, err := RecordsToCSV(testRecords())
		if err != nil {
			t.Fatalf("RecordsToCSV failed: %v", err)
		}

		want := "ID,Trained,Bytes\n1,true,2048\n2,false,0\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, data)
		}
	})

	t.Run("RecordsToMarkdown", func(t *testing.T) {
		data, err := RecordsToMarkdown(testRecords())
		if err != nil {
			t.Fatalf("RecordsToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"**Records**: 2", "| 1 | trained | 2.0 KiB |", "| 2 | pending | 0 B |"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("RecordsToText", func(t *testing.T) {
		data, err := RecordsToText(testRecords())
		if err != nil {
			t.Fatalf("RecordsToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Classifiers: 2", "trained", "pending", "2.0 KiB"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got: %s", want, output)
			}
		}

		empty, _ := RecordsToText(nil)
		if !strings.Contains(string(empty), "No classifiers stored.") {
			t.Errorf("unexpected empty listing: %s", empty)
		}
	})

	t.Run("Dispatch", func(t *testing.T) {
		for _, f := range []Format{Text, CSV, Markdown} {
			if _, err := testReport().Export(f); err != nil {
				t.Errorf("%s: classification export failed: %v", f, err)
			}
			if _, err := ExportRecords(testRecords(), f); err != nil {
				t.Errorf("%s: records export failed: %v", f, err)
			}
		}

		data, _ := ExportRecords(testRecords(), CSV)
		if !strings.HasPrefix(string(data), "ID,Trained,Bytes") {
			t.Errorf("expected CSV output, got: %s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", Text},
		{"text", Text},
		{"CSV", CSV},
		{"markdown", Markdown},
		{"md", Markdown},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("WritesFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		if err := WriteExport(path, []byte("ID\n")); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "ID\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		if err := WriteExport("", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		1024 * 1024: "1.0 MiB",
	}

	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
