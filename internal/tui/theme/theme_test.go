package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("flexoki-light"); got.Name != "flexoki-light" {
		t.Errorf("ByName(flexoki-light) = %q", got.Name)
	}
	if got := ByName(" Catppuccin-Mocha "); got.Name != CatppuccinMocha.Name {
		t.Errorf("ByName is not case-insensitive: %q", got.Name)
	}
	if got := ByName("solarized"); got.Name != FlexokiDark.Name {
		t.Errorf("ByName(unknown) = %q, want %q", got.Name, FlexokiDark.Name)
	}
}

func TestSetActiveAndNames(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("Active = %q, want terminal", Active.Name)
	}
	names := Names()
	if len(names) != len(All) || names[0] != "flexoki-dark" {
		t.Fatalf("Names() = %v", names)
	}
	if Active.Signed(-1) != Active.Red || Active.Signed(0) != Active.Green {
		t.Error("Signed picked the wrong color")
	}
}
