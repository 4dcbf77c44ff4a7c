package engineapi

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/escrowhouse/core"
)

// EncodeSnapshot serializes an engine snapshot to CBOR.
func EncodeSnapshot(s core.Snapshot) ([]byte, error) {
	data, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot deserializes a CBOR snapshot.
func DecodeSnapshot(data []byte) (core.Snapshot, error) {
	var s core.Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

// SaveSnapshot writes the engine's current state to path. The write goes
// through a temp file and rename so a crash mid-write cannot leave a
// truncated snapshot behind.
func SaveSnapshot(e *core.Engine, path string) error {
	data, err := EncodeSnapshot(e.Snapshot())
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from path and rebuilds the engine with the
// given options re-applied.
func LoadSnapshot(path string, opts ...core.Option) (*core.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return core.RestoreEngine(s, opts...)
}
