// Package services orchestrates the governance core: it reads facts through the
// repositories, asks internal/governance for a decision and persists the result
// with conditional writes.
package services

import "time"

// Clock returns the current instant. Services default to time.Now.
type Clock func() time.Time
