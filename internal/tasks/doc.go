// Package tasks implements the checkout/checkin protocol for stored classifiers.
//
// # Core Operations
//
// [ClassifierEngine] exposes three primitives:
//
//  1. [ClassifierEngine.Checkout] : exclusive load of a trainer and its pipeline
//     - Opens an exclusive store session for the model identity
//     - Bootstraps a fresh trainer and pipeline for new or never-trained rows
//     - Commits the session so the row exists before any payload is written
//
//  2. [ClassifierEngine.Checkin] : persist an updated trainer
//     - Derives the classifier from the trainer
//     - Encodes classifier, trainer and pipeline together
//     - Writes them in a new transaction
//
//  3. [ClassifierEngine.Read] : lockless read of the last committed classifier
//
// The engine does no locking of its own. Two checkouts of the same identity
// can diverge; callers serialize them with a [Locker], which
// [ClassifierEngine.Train] and [ClassifierEngine.TrainBatch] do for them.
//
// # Progress Reporting
//
// [ClassifierEngine.TrainBatch] reports [ProgressUpdate] values over a channel.
// Updates use select with default so reporting never blocks training.
package tasks
