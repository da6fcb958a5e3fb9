package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredDocListsRoutes(t *testing.T) {
	var doc struct {
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}

	routes := []struct{ path, method string }{
		{"/api/auth/login", "post"},
		{"/api/attendance/check-in", "post"},
		{"/api/attendance/check-out", "post"},
		{"/api/attendance/stats/{userId}", "get"},
		{"/api/leaves/{id}/status", "put"},
		{"/api/settings/attendance-hours", "put"},
		{"/api/users/{id}/reset-password", "put"},
		{"/api/health", "get"},
	}
	for _, r := range routes {
		if _, ok := doc.Paths[r.path][r.method]; !ok {
			t.Errorf("missing %s %s", r.method, r.path)
		}
	}
	for _, name := range []string{"handlers.punchRequest", "models.User", "services.TokenPair"} {
		if _, ok := doc.Definitions[name]; !ok {
			t.Errorf("missing definition %s", name)
		}
	}
}
