package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DatasetConfig describes one WOUDC dataset served by the feature service.
// The built-in registry covers the standard archive; deployments can load
// replacements from JSON files instead.
type DatasetConfig struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Queryables are the attribute names accepted for property filters,
	// when the deployment wants to restrict them. Empty means unrestricted.
	Queryables []string `json:"queryables,omitempty"`
}

// DatasetRegistry holds all known dataset configurations indexed by ID.
type DatasetRegistry struct {
	datasets map[string]*DatasetConfig
	order    []string
}

// NewDatasetRegistry creates a new empty dataset registry.
func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{
		datasets: make(map[string]*DatasetConfig),
	}
}

// BuiltinDatasets returns a registry preloaded with the standard WOUDC
// archive datasets.
func BuiltinDatasets() *DatasetRegistry {
	registry := NewDatasetRegistry()

	builtin := []*DatasetConfig{
		{ID: "totalozone", Title: "Total Ozone - Daily Observations"},
		{ID: "totalozoneobs", Title: "Total Ozone - Hourly Observations"},
		{ID: "ozonesonde", Title: "Ozonesonde Vertical Profiles"},
		{ID: "umkehr1", Title: "Umkehr - Level 1.0"},
		{ID: "umkehr2", Title: "Umkehr - Level 2.0"},
		{ID: "rocketsonde", Title: "Rocketsonde Vertical Profiles"},
		{ID: "lidar", Title: "Lidar Vertical Profiles"},
		{ID: "broad-band", Title: "Broad-band Ultraviolet Radiation"},
		{ID: "multi-band", Title: "Multi-band Ultraviolet Radiation"},
		{ID: "spectral", Title: "Spectral Ultraviolet Radiation"},
		{ID: "uv_index_hourly", Title: "Hourly UV Index"},
	}

	for _, d := range builtin {
		// Only duplicate IDs can fail here, and the list above has none.
		if err := registry.Add(d); err != nil {
			panic(err)
		}
	}

	return registry
}

// LoadDatasets loads dataset definitions from JSON files in the specified
// directory. Only files with a .json extension are processed.
func LoadDatasets(datasetsDir string) (*DatasetRegistry, error) {
	registry := NewDatasetRegistry()

	info, err := os.Stat(datasetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access datasets directory %q: %w", datasetsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("datasets path %q is not a directory", datasetsDir)
	}

	entries, err := os.ReadDir(datasetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets directory %q: %w", datasetsDir, err)
	}

	loadedCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		if !strings.HasSuffix(strings.ToLower(filename), ".json") {
			continue
		}

		filePath := filepath.Join(datasetsDir, filename)
		dataset, err := loadDatasetFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset from %q: %w", filePath, err)
		}

		if err := registry.Add(dataset); err != nil {
			return nil, fmt.Errorf("failed to add dataset from %q: %w", filePath, err)
		}

		loadedCount++
	}

	if loadedCount == 0 {
		return nil, fmt.Errorf("no dataset files found in %q", datasetsDir)
	}

	return registry, nil
}

// loadDatasetFile loads a single dataset configuration from a JSON file.
func loadDatasetFile(filePath string) (*DatasetConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var dataset DatasetConfig
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := validateDataset(&dataset); err != nil {
		return nil, fmt.Errorf("invalid dataset configuration: %w", err)
	}

	return &dataset, nil
}

// validateDataset checks that a dataset configuration is valid.
func validateDataset(d *DatasetConfig) error {
	if d.ID == "" {
		return fmt.Errorf("dataset ID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("dataset title is required")
	}

	return nil
}

// Add registers a dataset in the registry.
// Returns an error if a dataset with the same ID already exists.
func (r *DatasetRegistry) Add(dataset *DatasetConfig) error {
	if dataset == nil {
		return fmt.Errorf("cannot add nil dataset")
	}

	if _, exists := r.datasets[dataset.ID]; exists {
		return fmt.Errorf("dataset with ID %q already exists", dataset.ID)
	}

	r.datasets[dataset.ID] = dataset
	r.order = append(r.order, dataset.ID)
	return nil
}

// Get retrieves a dataset by ID.
// Returns nil if the dataset does not exist.
func (r *DatasetRegistry) Get(id string) *DatasetConfig {
	return r.datasets[id]
}

// Has checks if a dataset with the given ID exists in the registry.
func (r *DatasetRegistry) Has(id string) bool {
	_, exists := r.datasets[id]
	return exists
}

// All returns all datasets in registration order.
func (r *DatasetRegistry) All() []*DatasetConfig {
	datasets := make([]*DatasetConfig, 0, len(r.order))
	for _, id := range r.order {
		datasets = append(datasets, r.datasets[id])
	}
	return datasets
}

// IDs returns all dataset IDs in registration order.
func (r *DatasetRegistry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of datasets in the registry.
func (r *DatasetRegistry) Count() int {
	return len(r.datasets)
}
