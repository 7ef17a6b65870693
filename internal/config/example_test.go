package config_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ozonewatch/woudc-client/internal/config"
)

func ExampleLoad() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Access configuration values
	fmt.Printf("Server: %s\n", cfg.Server.Address())
	fmt.Printf("WOUDC service: %s\n", cfg.WOUDC.BaseURL)
	fmt.Printf("Protocol: %s\n", cfg.WOUDC.Protocol)
	fmt.Printf("Page size: %d\n", cfg.WOUDC.PageSize)

	// Output:
	// Server: 0.0.0.0:8080
	// WOUDC service: https://geo.woudc.org/ows
	// Protocol: wfs
	// Page size: 25000
}

func ExampleBuiltinDatasets() {
	registry := config.BuiltinDatasets()

	// Get a specific dataset
	if dataset := registry.Get("totalozone"); dataset != nil {
		fmt.Printf("Dataset ID: %s\n", dataset.ID)
		fmt.Printf("Title: %s\n", dataset.Title)
	}

	fmt.Printf("Total datasets: %d\n", registry.Count())

	// Output:
	// Dataset ID: totalozone
	// Title: Total Ozone - Daily Observations
	// Total datasets: 11
}

func ExampleServerConfig_Address() {
	// Set custom port
	os.Setenv("SERVER_PORT", "9090")
	defer os.Unsetenv("SERVER_PORT")

	cfg, _ := config.Load()

	// Get server address
	addr := cfg.Server.Address()
	fmt.Printf("Listen on: %s\n", addr)

	// Output:
	// Listen on: 0.0.0.0:9090
}
