package domain

import "testing"

func TestParseURIRoundTrip(t *testing.T) {
	cases := []struct {
		raw  string
		want RecordURI
	}{
		{"/repositories/2/accessions/17", RecordURI{RepositoryID: 2, Type: TypeAccession, ID: 17}},
		{"/repositories/1/agent_people/3", RecordURI{RepositoryID: 1, Type: TypeAgentPerson, ID: 3}},
		{"/repositories/9/events/44", RecordURI{RepositoryID: 9, Type: TypeEvent, ID: 44}},
	}
	for _, tc := range cases {
		got, err := ParseURI(tc.raw)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %s: got %+v", tc.raw, got)
		}
		if got.String() != tc.raw {
			t.Fatalf("round trip %s: got %s", tc.raw, got.String())
		}
	}
}

func TestParseURIRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{
		"",
		"/accessions/1",
		"/repositories/2/accessions",
		"/repositories/0/accessions/1",
		"/repositories/2/widgets/1",
		"/repositories/2/accessions/zero",
		"/repositories/2/accessions/-4",
	} {
		if _, err := ParseURI(raw); err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
	}
}

func TestTypeForPlural(t *testing.T) {
	if got, ok := TypeForPlural("events"); !ok || got != TypeEvent {
		t.Fatalf("unexpected type for events: %v %v", got, ok)
	}
	if _, ok := TypeForPlural("widgets"); ok {
		t.Fatal("expected unknown plural to miss")
	}
}
