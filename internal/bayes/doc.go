// Package bayes implements the collaborators stored by the classifier store: a
// text feature [Pipeline], an incremental multinomial Naive Bayes [Trainer] and
// the immutable [Classifier] derived from it.
//
// A trainer's counts are indexed by the pipeline's [Alphabet], so a trainer is
// only meaningful together with the pipeline it was trained through.
//
// All exported state is plain data so the types can be serialized with
// encoding/gob; they are registered in this package's init.
package bayes

import "encoding/gob"

func init() {
	gob.Register(&Pipeline{})
	gob.Register(&Trainer{})
	gob.Register(&Classifier{})
}
