/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package state

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
)

// FileStore persists the last-run boundary as a single-record JSON file.
// Absence of the file is not an error; it means no prior checkpoint.
type FileStore struct {
	path string
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

type record struct {
	LastRun string `json:"last_run"`
}

func (s *FileStore) Load(ctx context.Context) (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) { return "", false, nil }
		return "", false, err
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil { return "", false, err }
	if r.LastRun == "" { return "", false, nil }
	return r.LastRun, true, nil
}

func (s *FileStore) Save(ctx context.Context, boundary string) error {
	b, err := json.Marshal(record{LastRun: boundary})
	if err != nil { return err }
	return os.WriteFile(s.path, b, 0o644)
}
