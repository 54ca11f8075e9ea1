package pkg

import (
	"regexp"
	"testing"
)

func TestName(t *testing.T) {
	expected := "whale"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("Expected Description to be non-empty")
	}
}

func TestVersion(t *testing.T) {
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

	if v := Version(); !semver.MatchString(v) {
		t.Errorf("Expected Version to be a semantic version, got %q", v)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected at least one author")
	}

	for i, a := range Author {
		if a.Name == "" || a.Email == "" {
			t.Errorf("Author[%d] is incomplete: %+v", i, a)
		}
	}
}
