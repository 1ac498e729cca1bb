package caseid

import "testing"

func TestParseWithAppealNumber(t *testing.T) {
	id := Parse("12 C 123/2020-15")
	if id == nil {
		t.Fatal("expected successful parse")
	}
	if id.Senate != 12 || id.Matter != "C" || id.Sequence != 123 || id.Year != 2020 {
		t.Errorf("unexpected fields: %+v", id)
	}
	if id.Appeal == nil || *id.Appeal != 15 {
		t.Errorf("expected appeal 15, got %v", id.Appeal)
	}
}

func TestParseWithoutAppealNumber(t *testing.T) {
	id := Parse("3 T 456/2021")
	if id == nil {
		t.Fatal("expected successful parse")
	}
	if id.Senate != 3 || id.Matter != "T" || id.Sequence != 456 || id.Year != 2021 {
		t.Errorf("unexpected fields: %+v", id)
	}
	if id.Appeal != nil {
		t.Errorf("expected no appeal number, got %d", *id.Appeal)
	}
}

func TestParseMultiLetterMatterCode(t *testing.T) {
	id := Parse("28 Cdo 1774/2022")
	if id == nil {
		t.Fatal("expected successful parse")
	}
	if id.Matter != "Cdo" {
		t.Errorf("expected matter 'Cdo', got %q", id.Matter)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	bad := []string{
		"",
		"bad input",
		"12C123/2020",
		"12 C",
		"12 C 123/2020 extra",
		"x C 123/2020",
		"12 9 123/2020",
		"12 C 123-2020",
		"12 C abc/2020",
		"12 C 123/abcd",
		"12 C 123/2020-xy",
		"12 C 123/2020-15-3",
		"12 C 123/2020/21",
	}
	for _, s := range bad {
		if id := Parse(s); id != nil {
			t.Errorf("Parse(%q) = %+v, expected nil", s, id)
		}
	}
}
