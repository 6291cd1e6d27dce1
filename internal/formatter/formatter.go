// package formatter renders classifications and record listings as plain text, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
)

// Format is an output format accepted by the CLI.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat validates a format name. The empty string selects [Text].
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "":
		return Text, nil
	case Text, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", errors.Wrapf(shared.ErrInvalidArgument, "unknown format %q (want text, csv or markdown)", name)
	}
}

// ClassificationReport is one classified document.
type ClassificationReport struct {
	ID     int64                `json:"id"`
	Source string               `json:"source,omitempty"`
	Result bayes.Classification `json:"result"`
}

// Export renders r in format f.
func (r *ClassificationReport) Export(f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ClassificationToCSV(r)
	case Markdown:
		return ClassificationToMarkdown(r)
	default:
		return ClassificationToText(r)
	}
}

// ClassificationToCSV writes one row per label with columns: Classifier, Label, Probability
func ClassificationToCSV(r *ClassificationReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Classifier", "Label", "Probability"}); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV headers")
	}

	id := strconv.FormatInt(r.ID, 10)
	for _, s := range r.Result.Scores {
		if err := writer.Write([]string{id, s.Label, strconv.FormatFloat(s.Probability, 'f', 6, 64)}); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV record")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "CSV writer error")
	}

	return buf.Bytes(), nil
}

// ClassificationToMarkdown renders the scores as a Markdown table.
func ClassificationToMarkdown(r *ClassificationReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Classifier %d\n\n", r.ID)
	if r.Source != "" {
		fmt.Fprintf(&buf, "**Source**: %s\n\n", r.Source)
	}
	fmt.Fprintf(&buf, "**Label**: %s\n\n", r.Result.Label)

	buf.WriteString("| Label | Probability |\n")
	buf.WriteString("| --- | ---: |\n")
	for _, s := range r.Result.Scores {
		fmt.Fprintf(&buf, "| %s | %s |\n", s.Label, percent(s.Probability))
	}

	return buf.Bytes(), nil
}

// ClassificationToText renders the winning label and every score.
func ClassificationToText(r *ClassificationReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(styles.Title(fmt.Sprintf("Classifier %d", r.ID)) + "\n")
	if r.Source != "" {
		fmt.Fprintf(&buf, "Source: %s\n", r.Source)
	}
	fmt.Fprintf(&buf, "Label: %s\n\n", styles.OK(r.Result.Label))

	for i, s := range r.Result.Scores {
		fmt.Fprintf(&buf, "%d. %-16s %s\n", i+1, s.Label, percent(s.Probability))
	}

	return buf.Bytes(), nil
}

// RecordsToCSV converts record summaries to CSV with columns: ID, Trained, Bytes
func RecordsToCSV(records []models.RecordInfo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Trained", "Bytes"}); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV headers")
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatBool(rec.HasPayload),
			strconv.Itoa(rec.PayloadSize),
		}
		if err := writer.Write(row); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV record")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "CSV writer error")
	}

	return buf.Bytes(), nil
}

// RecordsToMarkdown renders record summaries as a Markdown table.
func RecordsToMarkdown(records []models.RecordInfo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Classifiers\n\n")
	fmt.Fprintf(&buf, "**Records**: %d\n\n", len(records))

	buf.WriteString("| ID | State | Size |\n")
	buf.WriteString("| ---: | --- | ---: |\n")
	for _, rec := range records {
		fmt.Fprintf(&buf, "| %d | %s | %s |\n", rec.ID, recordState(rec), FormatBytes(rec.PayloadSize))
	}

	return buf.Bytes(), nil
}

// RecordsToText renders record summaries one per line.
func RecordsToText(records []models.RecordInfo) ([]byte, error) {
	var buf bytes.Buffer

	if len(records) == 0 {
		buf.WriteString(styles.Help("No classifiers stored.") + "\n")
		return buf.Bytes(), nil
	}

	buf.WriteString(styles.Title(fmt.Sprintf("Classifiers: %d", len(records))) + "\n")
	for _, rec := range records {
		state := recordState(rec)
		if rec.HasPayload {
			state = styles.OK(state)
		} else {
			state = styles.Warn(state)
		}
		fmt.Fprintf(&buf, "%6d  %s  %s\n", rec.ID, state, FormatBytes(rec.PayloadSize))
	}

	return buf.Bytes(), nil
}

// ExportRecords renders records in format f.
func ExportRecords(records []models.RecordInfo, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return RecordsToCSV(records)
	case Markdown:
		return RecordsToMarkdown(records)
	default:
		return RecordsToText(records)
	}
}

// WriteExport writes data to path, creating or truncating the file.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return errors.Wrap(shared.ErrMissingArgument, "output path")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func recordState(rec models.RecordInfo) string {
	if rec.HasPayload {
		return models.SnapshotTrained.String()
	}
	return "pending"
}

func percent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64) + "%"
}
