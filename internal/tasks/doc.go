// Package tasks runs multi-request operations on top of the API client with progress reporting.
//
// # Snapshots
//
// [CaptureSnapshot] pages through a playlist and records its ordered track ids.
// [Diff] compares two captures as sets. [SnapshotTracker] combines both with a
// [models.SnapshotRepository] so that each call reports what changed since the last one.
//
// # Concurrent Operations
//
// [SearchAll] fans out several searches over a bounded worker group with a shared rate
// limiter. A failing query does not cancel the others.
//
// [ExportPlaylists] exports several playlists to files through a worker pool and writes
// a manifest summarizing the results.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block; updates
// are dropped when the channel is full.
package tasks
