// Package models defines the domain types of the classifier store.
//
// The package contains three categories of types:
//
// 1. Persistent records
//   - [ModelRecord] : one row per model identity with an optional compressed payload
//   - [RecordInfo] : listing summary of a stored record
//
// 2. Protocol values
//   - [Payload] : the decoded bundle of classifier, trainer and feature pipeline
//   - [CheckoutHandle] : an in-flight exclusive training session
//   - [Snapshot] : the result of a lockless read
//
// 3. Collaborator interfaces implemented by a concrete learning algorithm
//   - [Trainer], [Classifier], [Pipeline] and [Factory]
//
// The error taxonomy ([StoreError], [EncodingError], [DecodingError],
// [CheckoutError], [CheckinError], [ReadError]) lives in errors.go.
package models
