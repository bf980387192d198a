package config

import (
	"os"
	"path/filepath"
	"testing"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

const sourceTestConfig = `
metrics:
  - aws_namespace: AWS/ELB
    aws_metric_name: RequestCount
`

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sourceTestConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Path: path, Clients: &cloudwatch.Clients{}}
	cfg, err := src.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].MetricName != "RequestCount" {
		t.Errorf("rules = %+v", cfg.Rules)
	}
}

func TestFileSourceMissing(t *testing.T) {
	src := &FileSource{
		Path:    filepath.Join(t.TempDir(), "absent.yaml"),
		Clients: &cloudwatch.Clients{},
	}
	if _, err := src.Load(); err == nil {
		t.Fatal("Load of missing file should fail")
	}
}

func TestBytesSource(t *testing.T) {
	src := &BytesSource{Data: []byte(sourceTestConfig), Clients: &cloudwatch.Clients{}}
	cfg, err := src.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Rules) != 1 {
		t.Errorf("rules = %+v", cfg.Rules)
	}

	// Each Load reflects the current bytes.
	src.Data = []byte("metrics: []")
	if _, err := src.Load(); err == nil {
		t.Fatal("Load of empty metrics should fail")
	}
}
