package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs_RedactsSecretsAndHashesTenantIDs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"openai_api_key", "sk-abc",
		"organization_id", "org-1",
		"stage", "crawler",
	})
	if len(got) != 6 {
		t.Fatalf("unexpected kv length: %d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Fatalf("api key not redacted: %#v", got[1])
	}
	h, _ := got[3].(string)
	if !strings.HasPrefix(h, "hash:") || len(h) != len("hash:")+12 {
		t.Fatalf("organization id not hashed: %#v", got[3])
	}
	if got[5] != "crawler" {
		t.Fatalf("plain value changed: %#v", got[5])
	}
}

func TestSanitizeValue_NestedMap(t *testing.T) {
	out := sanitizeValue("payload", map[string]interface{}{"Authorization": "x", "url": "https://acme.test"})
	m, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	if m["Authorization"] != "[REDACTED]" || m["url"] != "https://acme.test" {
		t.Fatalf("unexpected map: %#v", m)
	}
}
