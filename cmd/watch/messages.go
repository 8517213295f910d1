package main

import "github.com/rxtech-lab/argo-feed/internal/types"

// SnapshotMsg carries the latest committed state from the orchestrator.
type SnapshotMsg struct {
	Snapshot types.Snapshot
}

// FeedErrorMsg reports a rejected filter change or refresh.
type FeedErrorMsg struct {
	Err error
}

// FeedClosedMsg signals that the snapshot subscription ended.
type FeedClosedMsg struct{}
