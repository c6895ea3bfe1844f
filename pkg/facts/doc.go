// Package facts stores the facts recorded for applicant cases.
//
// Facts are the JSON values eligibility rules evaluate against: scalars,
// lists, and nested documents keyed by dotted paths such as
// "salary" or "sponsor.licence_number". The evaluation pipeline reads a
// case's full fact set through the Store interface; how facts get into a
// store (casework intake, API uploads, test seeding) is up to the
// deployment.
//
// Two implementations are provided:
//
//   - MemoryStore: a mutex-guarded map for tests, examples, and
//     single-process deployments where facts arrive over the API.
//   - SQLiteStore: an embedded store holding one row per fact, with each
//     value serialized as JSON.
//
// A case with no recorded facts is indistinguishable from an unknown
// case: both report ErrCaseNotFound. Evaluating against an explicitly
// empty fact set is done by passing an empty set directly to the
// eligibility engine, not through a store.
package facts
