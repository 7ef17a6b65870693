package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinDatasets(t *testing.T) {
	registry := BuiltinDatasets()

	if registry.Count() == 0 {
		t.Fatal("expected built-in datasets")
	}

	for _, id := range []string{"totalozone", "ozonesonde", "umkehr1", "umkehr2", "spectral"} {
		if !registry.Has(id) {
			t.Errorf("expected built-in dataset %q", id)
		}
	}

	if got := registry.Get("totalozone"); got == nil || got.Title == "" {
		t.Error("expected totalozone to carry a title")
	}
}

func TestLoadDatasets(t *testing.T) {
	tmpDir := t.TempDir()

	dataset := DatasetConfig{
		ID:          "test-dataset",
		Title:       "Test Dataset",
		Description: "A test dataset",
		Queryables:  []string{"platform_id"},
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal test dataset: %v", err)
	}

	datasetFile := filepath.Join(tmpDir, "test.json")
	if err := os.WriteFile(datasetFile, data, 0644); err != nil {
		t.Fatalf("failed to write test dataset: %v", err)
	}

	registry, err := LoadDatasets(tmpDir)
	if err != nil {
		t.Fatalf("LoadDatasets() failed: %v", err)
	}

	if registry.Count() != 1 {
		t.Errorf("expected 1 dataset, got %d", registry.Count())
	}

	ds := registry.Get("test-dataset")
	if ds == nil {
		t.Fatal("dataset not found")
	}

	if ds.Title != "Test Dataset" {
		t.Errorf("expected title 'Test Dataset', got %s", ds.Title)
	}
}

func TestLoadDatasetsInvalidDirectory(t *testing.T) {
	_, err := LoadDatasets("/nonexistent/directory")
	if err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestLoadDatasetsEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadDatasets(tmpDir)
	if err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name      string
		dataset   *DatasetConfig
		wantError bool
	}{
		{
			name:      "valid dataset",
			dataset:   &DatasetConfig{ID: "test", Title: "Test"},
			wantError: false,
		},
		{
			name:      "missing ID",
			dataset:   &DatasetConfig{Title: "Test"},
			wantError: true,
		},
		{
			name:      "missing title",
			dataset:   &DatasetConfig{ID: "test"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDataset(tt.dataset)
			if (err != nil) != tt.wantError {
				t.Errorf("validateDataset() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestRegistryAddDuplicate(t *testing.T) {
	registry := NewDatasetRegistry()

	if err := registry.Add(&DatasetConfig{ID: "dup", Title: "Dup"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := registry.Add(&DatasetConfig{ID: "dup", Title: "Dup"}); err == nil {
		t.Error("expected error for duplicate ID")
	}
}

func TestRegistryOrder(t *testing.T) {
	registry := NewDatasetRegistry()
	for _, id := range []string{"c", "a", "b"} {
		if err := registry.Add(&DatasetConfig{ID: id, Title: id}); err != nil {
			t.Fatalf("add %q failed: %v", id, err)
		}
	}

	ids := registry.IDs()
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], ids[i])
		}
	}
}
