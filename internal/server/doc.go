// Package server exposes the classifier engine over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first).
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Classifier Handler
//
// [ClassifierHandler] serves the lockless read path and batch training:
//
//	GET  /classifiers                  → stored records
//	POST /classifiers/{id}/classify    → {"text": ...} scored by the last committed classifier
//	POST /classifiers/{id}/train       → {"documents": [{"label": ..., "text": ...}]}
//
// Classification requests never wait for training; they see the classifier as
// of the last completed checkin.
package server
