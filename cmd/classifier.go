package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/formatter"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
	"github.com/desertthunder/newspet/internal/tasks"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Train trains the classifier given by --id with one document or a JSON lines batch.
func (r *Runner) Train(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")
	asJSON := cmd.Bool("json")

	docs, err := readDocuments(cmd)
	if err != nil {
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	r.logger.Info("training classifier", "classifier", id, "documents", len(docs))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if asJSON {
				continue
			}
			switch update.Phase {
			case tasks.AcquireLock, tasks.CheckoutModel:
				r.writePlain("🔒 %s\n", update.Message)
			case tasks.TrainDocuments:
				r.writePlain("   %s\n", update.Message)
			case tasks.CheckinModel:
				r.writePlain("💾 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.TrainBatch(ctx, id, docs, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	return r.writePlain("Trained %d documents into classifier %d (%d instances total)\n", result.Trained, result.ID, result.Instances)
}

// Classify scores a document against the last committed classifier for --id.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	text, source, err := readDocument(cmd)
	if err != nil {
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	snap, err := r.engine.Read(ctx, id)
	if err != nil {
		return err
	}
	if !snap.Available() {
		return fmt.Errorf("%w: classifier %d has not been trained", shared.ErrNotFound, id)
	}

	model, ok := snap.Model.(*bayes.Classifier)
	if !ok {
		return fmt.Errorf("%w: classifier %d has unsupported type %T", shared.ErrInvalidInput, id, snap.Model)
	}

	report := &formatter.ClassificationReport{ID: id, Source: source, Result: model.Classify(text)}
	r.logger.Debug("classified document", "classifier", id, "label", report.Result.Label)

	var data []byte
	if cmd.Bool("json") {
		data, err = marshalJSON(report, cmd.Bool("pretty"))
	} else {
		data, err = report.Export(format)
	}
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, data); err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", path)
	}

	return r.writeBytes(data)
}

// List prints every stored classifier record.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	records, err := r.repo.List(ctx)
	if err != nil {
		return err
	}
	if records == nil {
		records = []models.RecordInfo{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	data, err := formatter.ExportRecords(records, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Reset deletes the classifier given by --id.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")

	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("deleted classifier", "classifier", id)
	return r.writePlain("✓ Deleted classifier %d\n", id)
}

// readDocument returns the text given by exactly one of --text or --file, and
// the file name as its source.
func readDocument(cmd *cli.Command) (text, source string, err error) {
	textArg, fileArg := cmd.String("text"), cmd.String("file")

	switch {
	case textArg != "" && fileArg != "":
		return "", "", fmt.Errorf("%w: cannot specify both --text and --file", shared.ErrInvalidArgument)
	case textArg != "":
		return textArg, "", nil
	case fileArg != "":
		data, err := os.ReadFile(fileArg)
		if err != nil {
			return "", "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), fileArg, nil
	default:
		return "", "", fmt.Errorf("%w: either --text or --file must be provided", shared.ErrMissingArgument)
	}
}

// readDocuments collects training documents from --batch, or from --label with --text or --file.
func readDocuments(cmd *cli.Command) ([]tasks.Document, error) {
	if path := cmd.String("batch"); path != "" {
		if cmd.String("text") != "" || cmd.String("file") != "" {
			return nil, fmt.Errorf("%w: --batch cannot be combined with --text or --file", shared.ErrInvalidArgument)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read batch: %w", err)
		}
		return decodeDocuments(data)
	}

	label := cmd.String("label")
	if label == "" {
		return nil, fmt.Errorf("%w: --label is required without --batch", shared.ErrMissingArgument)
	}

	text, _, err := readDocument(cmd)
	if err != nil {
		return nil, err
	}

	return []tasks.Document{{Label: label, Text: text}}, nil
}

// decodeDocuments parses a stream of JSON documents.
func decodeDocuments(data []byte) ([]tasks.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var docs []tasks.Document
	for {
		var doc tasks.Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", shared.ErrInvalidInput, len(docs)+1, err)
		}
		if doc.Label == "" {
			return nil, fmt.Errorf("%w: document %d has no label", shared.ErrInvalidInput, len(docs)+1)
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: batch contains no documents", shared.ErrInvalidInput)
	}

	return docs, nil
}

func marshalJSON(data any, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(out, '\n'), nil
}
