// Package state provides JSON snapshot storage for interview sessions so
// an interrupted run can be inspected or resumed.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is one persisted view of a session at a control state boundary.
type Snapshot struct {
	SessionID    string          `json:"session_id"`
	ControlState string          `json:"control_state"`
	SavedAt      time.Time       `json:"saved_at"`
	Session      json.RawMessage `json:"session"`
}

// Store manages persistent snapshot storage for sessions.
type Store struct {
	baseDir string
}

// NewStore creates a snapshot store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save persists the session under its ID, overwriting any prior snapshot.
func (s *Store) Save(sessionID, controlState string, session any) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	if controlState == "" {
		return fmt.Errorf("controlState cannot be empty")
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", sessionID, err)
	}

	snapshot := Snapshot{
		SessionID:    sessionID,
		ControlState: controlState,
		SavedAt:      time.Now().UTC(),
		Session:      raw,
	}

	jsonData, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for session %s: %w", sessionID, err)
	}

	if err := os.WriteFile(s.snapshotFilename(sessionID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file for session %s: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the snapshot for the given session and unmarshals the
// session payload into out. A missing snapshot returns os.ErrNotExist.
func (s *Store) Load(sessionID string, out any) (*Snapshot, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	fileData, err := os.ReadFile(s.snapshotFilename(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for session %s: %w", sessionID, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(fileData, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot for session %s: %w", sessionID, err)
	}

	if out != nil {
		if err := json.Unmarshal(snapshot.Session, out); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session payload for %s: %w", sessionID, err)
		}
	}
	return &snapshot, nil
}

// Delete removes the snapshot for the given session if it exists.
func (s *Store) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	filename := s.snapshotFilename(sessionID)
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("failed to delete snapshot for session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns the IDs of all sessions with a snapshot on disk.
func (s *Store) ListSessions() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Filename pattern: SESSION_<id>.json
		if len(name) > 13 && name[:8] == "SESSION_" && name[len(name)-5:] == ".json" {
			sessionIDs = append(sessionIDs, name[8:len(name)-5])
		}
	}
	return sessionIDs, nil
}

func (s *Store) snapshotFilename(sessionID string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("SESSION_%s.json", sessionID))
}
