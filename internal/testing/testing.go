// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/newspet/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// StubClassifier is a [models.Classifier] with a fixed label set.
type StubClassifier struct {
	Names []string
}

func (c *StubClassifier) Labels() []string { return c.Names }

// StubPipeline is a [models.Pipeline] reporting a fixed feature count.
type StubPipeline struct {
	Features int
}

func (p *StubPipeline) FeatureCount() int { return p.Features }

// StubTrainer is a [models.Trainer] whose model derivation can be made to fail.
type StubTrainer struct {
	Seen int
	Fail bool
}

func (t *StubTrainer) CurrentModel(pipe models.Pipeline) (models.Classifier, error) {
	if t.Fail {
		return nil, errors.New("model derivation failed")
	}
	return &StubClassifier{Names: []string{"stub"}}, nil
}

func (t *StubTrainer) Instances() int { return t.Seen }

// StubFactory creates stub collaborators and counts bootstraps.
type StubFactory struct {
	Trainers  int
	Pipelines int
}

func (f *StubFactory) NewTrainer() models.Trainer {
	f.Trainers++
	return &StubTrainer{}
}

func (f *StubFactory) NewPipeline() models.Pipeline {
	f.Pipelines++
	return &StubPipeline{}
}

// Unencodable is a [models.Pipeline] gob cannot serialize.
type Unencodable struct {
	Fn func()
}

func (Unencodable) FeatureCount() int { return 0 }

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
