package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Data.Source != "csv" {
		t.Errorf("Data.Source = %q, want csv", cfg.Data.Source)
	}
	if cfg.Data.BatchSize != 1000 {
		t.Errorf("Data.BatchSize = %d, want 1000", cfg.Data.BatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("RIDE_SERVER_PORT", "9090")
	t.Setenv("RIDE_DATA_CSV_PATH", "/data/trips.csv")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Data.CSVPath != "/data/trips.csv" {
		t.Errorf("Data.CSVPath = %q, want /data/trips.csv", cfg.Data.CSVPath)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown source", func(c *Config) { c.Data.Source = "kafka" }, true},
		{"csv source without path", func(c *Config) { c.Data.CSVPath = "" }, true},
		{"database source", func(c *Config) { c.Data.Source = "database" }, false},
		{"zero batch size", func(c *Config) { c.Data.BatchSize = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.mutate(cfg)

			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
