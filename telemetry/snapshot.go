package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/snowfall/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete flake pool state at one frame.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Frame  uint64  `json:"frame"`

	Flakes []FlakeState `json:"flakes"`
}

// FlakeState holds one pool slot.
type FlakeState struct {
	Active  bool    `json:"active"`
	Layer   int     `json:"layer"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Radius  float64 `json:"r"`
	Opacity float64 `json:"opacity"`
	Phase   float64 `json:"phase"`
}

// CaptureFlakes copies the pool into serializable form.
func CaptureFlakes(pool *systems.FlakePool) []FlakeState {
	if pool == nil {
		return nil
	}
	out := make([]FlakeState, len(pool.Flakes))
	for i := range pool.Flakes {
		f := &pool.Flakes[i]
		out[i] = FlakeState{
			Active:  f.Active,
			Layer:   f.LayerIndex,
			X:       f.X,
			Y:       f.Y,
			VX:      f.VX,
			VY:      f.VY,
			Radius:  f.Radius,
			Opacity: f.Opacity,
			Phase:   f.Phase,
		}
	}
	return out
}

// RestoreFlakes writes saved flake states back into pool. The pool must
// have the same size and layer partition as the one captured.
func RestoreFlakes(pool *systems.FlakePool, flakes []FlakeState) error {
	if pool == nil || len(flakes) != len(pool.Flakes) {
		return fmt.Errorf("restore flakes: snapshot has %d flakes, pool has %d", len(flakes), poolLen(pool))
	}
	for i, s := range flakes {
		if s.Layer != pool.Flakes[i].LayerIndex {
			return fmt.Errorf("restore flakes: slot %d is layer %d, snapshot says %d", i, pool.Flakes[i].LayerIndex, s.Layer)
		}
	}
	for i, s := range flakes {
		f := &pool.Flakes[i]
		f.Active = s.Active
		f.X, f.Y = s.X, s.Y
		f.VX, f.VY = s.VX, s.VY
		f.AX, f.AY = 0, 0
		f.Radius = s.Radius
		f.Opacity = s.Opacity
		f.Phase = s.Phase
	}
	return nil
}

func poolLen(pool *systems.FlakePool) int {
	if pool == nil {
		return 0
	}
	return pool.Len()
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
