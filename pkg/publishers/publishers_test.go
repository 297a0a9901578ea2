package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: alerts
    type: SNS
    sns:
      topic_arn: arn:aws:sns:us-east-1:000000000000:relay-health
      region: us-east-1
      endpoint: " http://localhost:4566 "
      access_key_id: test
      secret_access_key: test
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "alerts" {
		t.Fatalf("expected only alerts enabled, got %#v", enabled)
	}
	sns := enabled[0]
	if sns.Type != TypeSNS {
		t.Fatalf("type not normalized: %q", sns.Type)
	}
	if sns.SNS.Endpoint != "http://localhost:4566" || sns.SNS.AccessKeyID != "test" {
		t.Fatalf("inline aws access not decoded: %+v", sns.SNS.AWSAccess)
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://sqs"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "g1", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: hook
    type: http
    http:
      url: https://hooks.example/a
  - id: " hook "
    type: http
    http:
      url: https://hooks.example/b
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil || !strings.Contains(err.Error(), "duplicate publisher id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestEnabledOnNilRegistry(t *testing.T) {
	var reg *ConfigRegistry
	if got := reg.Enabled(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
