package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obsforge/obsvalidate/catalog"
	"github.com/obsforge/obsvalidate/types"
)

func writeTemplate(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestDirCatalog_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "rads_adt_3a.yaml.tmpl", "- obs space:\n    name: rads_adt_3a\n")
	writeTemplate(t, dir, "sst_viirs_npp_l3u.yaml.tmpl", "- obs space:\n    name: sst\n")
	writeTemplate(t, dir, "notes.txt", "not a template")

	c, err := catalog.NewDirCatalog(dir)
	if err != nil {
		t.Fatalf("NewDirCatalog: %v", err)
	}

	tmpl, ok := c.Resolve(types.ObservationTypeID("rads_adt_3a"))
	if !ok {
		t.Fatal("expected rads_adt_3a to resolve")
	}
	text, err := tmpl.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if text == "" {
		t.Error("expected non-empty template text")
	}

	// Absence is a normal outcome, not an error.
	if _, ok := c.Resolve(types.ObservationTypeID("rads_adt_j3")); ok {
		t.Error("rads_adt_j3 should not resolve")
	}

	ids := c.IDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 catalogued ids, got %d: %v", len(ids), ids)
	}
	if ids[0] != "rads_adt_3a" || ids[1] != "sst_viirs_npp_l3u" {
		t.Errorf("IDs not sorted: %v", ids)
	}
}

func TestDirCatalog_MissingDirectory(t *testing.T) {
	c, err := catalog.NewDirCatalog(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing catalog directory must not error, got %v", err)
	}
	if _, ok := c.Resolve(types.ObservationTypeID("anything")); ok {
		t.Error("empty catalog should resolve nothing")
	}
	if len(c.IDs()) != 0 {
		t.Errorf("expected no ids, got %v", c.IDs())
	}
}

func TestMemCatalog(t *testing.T) {
	c := catalog.MemCatalog{
		"rads_adt_3a": "- obs space:\n    name: a\n",
	}

	tmpl, ok := c.Resolve("rads_adt_3a")
	if !ok {
		t.Fatal("expected rads_adt_3a to resolve")
	}
	text, err := tmpl.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if text != "- obs space:\n    name: a\n" {
		t.Errorf("unexpected template text: %q", text)
	}

	if _, ok := c.Resolve("absent"); ok {
		t.Error("absent id should not resolve")
	}
}
