package i18n

import "testing"

func TestEmbeddedCatalogsLoad(t *testing.T) {
	if err := LoadErr(); err != nil {
		t.Fatalf("embedded catalogs failed to load: %v", err)
	}
}

func TestGetCatalogFallsBackToBaseLocale(t *testing.T) {
	c := GetCatalog("fr-FR")
	if c.Locale() != BaseLocale {
		t.Fatalf("locale = %q, want %q", c.Locale(), BaseLocale)
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	c := GetCatalog("en-US")
	got := c.Format("MODIFIER_INVALID_TARGET", map[string]string{"Target": "bogus.path"})
	want := "Target bogus.path is not a recognized modifier target"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormatUnknownCodeReturnsCode(t *testing.T) {
	c := GetCatalog("en-US")
	if got := c.Format("NO_SUCH_CODE", nil); got != "NO_SUCH_CODE" {
		t.Fatalf("Format = %q, want code passthrough", got)
	}
}

func TestPortugueseCatalogIsDistinct(t *testing.T) {
	c := GetCatalog("pt-BR")
	if c.Locale() != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", c.Locale())
	}
	got := c.Format("ENGINE_NIL_CHARACTER", nil)
	if got == GetCatalog("en-US").Format("ENGINE_NIL_CHARACTER", nil) {
		t.Fatalf("pt-BR message should differ from en-US, got %q", got)
	}
}
