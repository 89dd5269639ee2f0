// Package batch orchestrates processing and uploading collections of
// media files with bounded concurrency on two independent axes.
//
// Each batch gets its own id, its own cancellation context, and two
// limiters (processing and upload). Files settle independently: one
// file's failure never aborts its siblings. Batches can be paused and
// resumed; resuming re-runs only files without an outcome. Cancellation
// is terminal and aborts in-flight uploads, but never undoes completed
// ones.
//
// All batch mutation happens behind the batch mutex; callers observe
// state only through snapshots and callbacks.
package batch
