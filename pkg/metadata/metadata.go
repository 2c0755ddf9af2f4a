// Package metadata provides signed run manifests that tie a pipeline output
// file to the batch that produced it.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest verification errors.
var (
	ErrNoHashFound   = errors.New("no hash found in manifest")
	ErrHashMismatch  = errors.New("hash mismatch")
	ErrCountMismatch = errors.New("record count mismatch")
)

// Manifest describes one pipeline run.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Version     string    `yaml:"version"`
	Input       string    `yaml:"input,omitempty"`
	Output      string    `yaml:"output,omitempty"`
	Records     int       `yaml:"records"`
	Valid       int       `yaml:"valid"`
	Invalid     int       `yaml:"invalid"`
	Hash        string    `yaml:"hash"`
	// Validation is true when every input record passed validation.
	Validation bool `yaml:"validation"`
}

// New starts a manifest for a run with a fresh run ID.
func New(version string) *Manifest {
	return &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Version:     version,
	}
}

// CalculateHash computes the SHA-256 hash of content.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// SetCounts records the batch outcome.
func (m *Manifest) SetCounts(total, valid, invalid int) {
	m.Records = total
	m.Valid = valid
	m.Invalid = invalid
	m.Validation = invalid == 0
}

// Sign stores the hash of the output content.
func (m *Manifest) Sign(content []byte) {
	m.Hash = CalculateHash(content)
}

// Verify checks that content matches the signed hash.
func (m *Manifest) Verify(content []byte) error {
	if m.Hash == "" {
		return ErrNoHashFound
	}

	calculated := CalculateHash(content)
	if calculated != m.Hash {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.Hash, calculated)
	}

	return nil
}

// VerifyCount checks that the output holds as many records as the manifest
// says passed validation.
func (m *Manifest) VerifyCount(n int) error {
	if n != m.Valid {
		return fmt.Errorf("%w: manifest has %d valid records, output has %d", ErrCountMismatch, m.Valid, n)
	}

	return nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return data, nil
}

// Parse decodes a YAML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &m, nil
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return Parse(data)
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
