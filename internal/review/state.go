package review

import (
	"encoding/json"
	"fmt"
	"os"
)

// State tracks how far into the raw worksheet review has progressed.
// Row indexes are zero-based over the sheet including its header, so 0
// means nothing reviewed yet.
type State struct {
	LastProcessedRow int `json:"last_processed_row"`
}

// LoadState reads the state file; a missing file means starting from the top.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("LoadState: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("LoadState: parsing %s: %w", path, err)
	}
	return s, nil
}

// SaveState writes the state file.
func SaveState(path string, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}
	return nil
}
