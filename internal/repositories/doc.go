// Package repositories implements SQLite persistence for classifier records.
//
// [ClassifierRepository] is the only access path to the classifiers table and
// offers two transaction disciplines:
//   - exclusive sessions ([ClassifierRepository.BeginExclusiveSession],
//     [ClassifierRepository.Begin], [ClassifierRepository.CommitSession]) with
//     manual commit, used by checkout and checkin
//   - autocommit snapshot reads ([ClassifierRepository.ReadSnapshot]) that take
//     no lock and only ever see committed payloads
//
// Every failure is reported as a *models.StoreError and leaves no partial commit behind.
package repositories
