package models

import "testing"

func TestNewNewsRecordDefaultsSnippet(t *testing.T) {
	r := NewNewsRecord("台積電法說會釋利多", "", "經濟日報")
	if r.Snippet != r.Title {
		t.Errorf("Snippet: got %q, want title %q", r.Snippet, r.Title)
	}
	if r.Text() != r.Title {
		t.Errorf("Text() should not duplicate the title, got %q", r.Text())
	}

	r = NewNewsRecord("台積電法說會", "外資買超", "經濟日報")
	if r.Text() != "台積電法說會 外資買超" {
		t.Errorf("Text(): got %q", r.Text())
	}
}

func TestTitleLenCountsRunes(t *testing.T) {
	r := NewNewsRecord("台積電", "", "Yahoo")
	if r.TitleLen() != 3 {
		t.Errorf("TitleLen: got %d, want 3", r.TitleLen())
	}
}

func TestScanResultLookup(t *testing.T) {
	scan := ScanResult{
		Code: "2330",
		Sources: []SourceResult{
			{Source: "A", Records: []NewsRecord{NewNewsRecord("a1 title", "", "A"), NewNewsRecord("a2 title", "", "A")}},
			{Source: "B", Failed: true},
			{Source: "C", Records: []NewsRecord{NewNewsRecord("c1 title", "", "C")}},
		},
	}

	if _, ok := scan.Get("B"); !ok {
		t.Error("Get(B) should find the source")
	}
	if _, ok := scan.Get("Z"); ok {
		t.Error("Get(Z) should not find anything")
	}
	if got := scan.RecordCount(); got != 3 {
		t.Errorf("RecordCount: got %d, want 3", got)
	}
	all := scan.AllRecords()
	if len(all) != 3 || all[0].Title != "a1 title" || all[2].Title != "c1 title" {
		t.Errorf("AllRecords order wrong: %+v", all)
	}
	if m := scan.ByName(); !m["B"].Empty() || m["A"].Empty() {
		t.Errorf("ByName: unexpected emptiness %+v", m)
	}
}
