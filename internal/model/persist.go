package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qventory/demandcast/internal/domain"
)

// Save writes the fitted regressor to path as a JSON artifact: the
// hyperparameters, feature-column order and the trees themselves.
func (r *Regressor) Save(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model artifact %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved artifact. A missing file is a model-state
// error: the caller must train before forecasting.
func Load(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: artifact %s not found, run train first", domain.ErrNoModel, path)
		}
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var r Regressor
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	return &r, nil
}
