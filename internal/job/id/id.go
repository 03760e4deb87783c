// Package id provides unique identifier generation for conversion runs.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generate creates a new unique run ID.
// Format: run-<timestamp>-<random>
// Example: run-1701432000-a1b2c3d4
func Generate() string {
	timestamp := time.Now().Unix()
	random, err := uuid.NewRandom()
	if err != nil {
		// Fallback to timestamp only if the random source fails
		return fmt.Sprintf("run-%d", timestamp)
	}
	return fmt.Sprintf("run-%d-%s", timestamp, strings.ReplaceAll(random.String(), "-", "")[:8])
}
