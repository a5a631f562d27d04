package access

import (
	"context"
	"testing"
)

func TestCatalog_Load(t *testing.T) {
	catalog, err := LoadCatalog(context.Background(), newFakeStore())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	if catalog.Len() != 16 {
		t.Errorf("Expected 16 seeded permissions, got %d", catalog.Len())
	}
	if !catalog.Has(PermModerateChat) {
		t.Error("Expected MODERATE_CHAT in catalog")
	}
	if catalog.Has("NOT_A_PERMISSION") {
		t.Error("Expected unknown name to be rejected")
	}

	names := catalog.Names()
	if len(names) != catalog.Len() {
		t.Errorf("Names() returned %d entries, want %d", len(names), catalog.Len())
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Expected sorted names, got %s before %s", names[i-1], names[i])
		}
	}
}

func TestCatalog_DuplicateNamesIgnored(t *testing.T) {
	catalog := NewCatalog([]Permission{
		{ID: "perm_a", Name: "SEND_CHAT"},
		{ID: "perm_b", Name: "SEND_CHAT"},
	})
	if catalog.Len() != 1 {
		t.Errorf("Expected duplicates collapsed, got %d entries", catalog.Len())
	}
	p, ok := catalog.Get("SEND_CHAT")
	if !ok || p.ID != "perm_a" {
		t.Errorf("Expected first entry to win, got %+v", p)
	}
}
