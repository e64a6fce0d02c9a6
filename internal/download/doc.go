// Package download implements the fetch stage: it streams episode audio
// from the item's source URL into the per-item staging directory, tracking
// byte progress on the queue item as it goes. Items enqueued from local
// files never reach this stage.
package download
