package cafeteria

import (
	"testing"
)

func TestNewDirectory_DefaultsWhenEmpty(t *testing.T) {
	dir := NewDirectory(nil, "")

	if len(dir.All()) != len(DefaultCafeterias()) {
		t.Fatalf("Expected %d cafeterias, got %d", len(DefaultCafeterias()), len(dir.All()))
	}
	if dir.Name("650111") != "中央食堂" {
		t.Errorf("Expected 中央食堂, got '%s'", dir.Name("650111"))
	}
}

func TestDirectory_SortedByName(t *testing.T) {
	dir := NewDirectory([]Cafeteria{
		{ID: "2", Name: "b"},
		{ID: "1", Name: "a"},
		{ID: "3", Name: "c"},
	}, "")

	all := dir.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name > all[i].Name {
			t.Errorf("Directory not sorted: %v", all)
		}
	}
}

func TestDirectory_UnknownID(t *testing.T) {
	dir := NewDirectory(nil, "https://example.com/menu.php?t={id}")

	if dir.Name("999999") != "999999" {
		t.Errorf("Unknown id should be returned verbatim, got '%s'", dir.Name("999999"))
	}
	if dir.URL("999999") != "https://example.com/menu.php?t=999999" {
		t.Errorf("Unexpected URL '%s'", dir.URL("999999"))
	}
	if dir.Contains("999999") {
		t.Error("Contains should be false for unknown id")
	}
}

func TestMenuURL_DefaultTemplate(t *testing.T) {
	if got := MenuURL("", "650111"); got != "https://west2-univ.jp/sp/menu.php?t=650111" {
		t.Errorf("Unexpected URL '%s'", got)
	}
}

func TestDirectory_AllReturnsCopy(t *testing.T) {
	dir := NewDirectory(nil, "")
	all := dir.All()
	all[0].Name = "changed"

	if dir.All()[0].Name == "changed" {
		t.Error("All should return a copy")
	}
}
