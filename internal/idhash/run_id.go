package idhash

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic run_id.
// Formula: base58(SHA256(profile_id|symbol|scenario_id|first_bar|last_bar|config_json))
// Identical inputs over identical data always map to the same run.
func ComputeRunID(
	profileID string,
	symbol string,
	scenarioID string,
	firstBar time.Time,
	lastBar time.Time,
	configJSON []byte,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		profileID,
		symbol,
		scenarioID,
		firstBar.Unix(),
		lastBar.Unix(),
		configJSON,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
