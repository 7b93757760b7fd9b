package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""
	cfg.Chat.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_BadWeights(t *testing.T) {
	tests := []struct {
		name             string
		subject, content float64
	}{
		{"sum below one", 0.3, 0.3},
		{"sum above one", 0.7, 0.7},
		{"negative weight", -0.2, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search.SubjectWeight = tt.subject
			cfg.Search.ContentWeight = tt.content

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for weights %v/%v", tt.subject, tt.content)
			}
		})
	}
}

func TestValidate_BadMetric(t *testing.T) {
	cfg := validConfig()
	cfg.Index.Metric = "EUCLID"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{APIKey: "shared-key", BaseURL: "https://api.example.com/v1"},
	}
	cfg.ApplyDefaults()

	if cfg.Mail.PollIntervalSec != 60 {
		t.Errorf("poll interval = %d", cfg.Mail.PollIntervalSec)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" || cfg.Embedding.Dimensions != 3072 {
		t.Errorf("embedding defaults = %s/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	if cfg.Search.SubjectWeight != 0.4 || cfg.Search.ContentWeight != 0.6 {
		t.Errorf("weights = %v/%v", cfg.Search.SubjectWeight, cfg.Search.ContentWeight)
	}
	if cfg.Search.ConfidenceThreshold != 0.7 {
		t.Errorf("threshold = %v", cfg.Search.ConfidenceThreshold)
	}
	// chat credentials fall back to the embedding provider
	if cfg.Chat.APIKey != "shared-key" || cfg.Chat.BaseURL != "https://api.example.com/v1" {
		t.Errorf("chat fallback = %s / %s", cfg.Chat.APIKey, cfg.Chat.BaseURL)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.DelaySec != 1 {
		t.Errorf("retry defaults = %d/%d", cfg.Retry.Attempts, cfg.Retry.DelaySec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MAILBOT_TEST_KEY", "secret")

	in := []byte("api_key: ${MAILBOT_TEST_KEY}\nmodel: ${MAILBOT_TEST_MODEL:-gpt-4o-mini}")
	got := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: gpt-4o-mini"
	if got != want {
		t.Errorf("expanded:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := []byte(`
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  api_key: ${MAILBOT_TEST_LOAD_KEY:-file-key}
search:
  subject_weight: 0.5
  content_weight: 0.5
`)
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "file-key" {
		t.Errorf("api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Search.SubjectWeight != 0.5 {
		t.Errorf("subject weight = %v", cfg.Search.SubjectWeight)
	}
}
