package domain

import "testing"

func validAttrs() Attributes {
	return Attributes{
		FullName:   "Jana Dvorakova",
		Phone:      "+420 777 000 111",
		Email:      "jana@example.com",
		Employer:   "Acme s.r.o.",
		Position:   "Site engineer",
		Reputation: 7.5,
		ImageRef:   "photos/jana.jpg",
	}
}

func TestNewIdentity_Valid(t *testing.T) {
	ident, err := NewIdentity(validAttrs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.ID() != "" {
		t.Errorf("expected empty id before store assignment, got %q", ident.ID())
	}
	if ident.FullName() != "Jana Dvorakova" {
		t.Errorf("unexpected name %q", ident.FullName())
	}
}

func TestNewIdentity_MissingName(t *testing.T) {
	attrs := validAttrs()
	attrs.FullName = "   "
	if _, err := NewIdentity(attrs); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestNewIdentity_ReputationBounds(t *testing.T) {
	attrs := validAttrs()
	attrs.Reputation = 10.5
	if _, err := NewIdentity(attrs); err == nil {
		t.Fatal("expected error for reputation above 10")
	}
	attrs.Reputation = -0.1
	if _, err := NewIdentity(attrs); err == nil {
		t.Fatal("expected error for negative reputation")
	}
}

func TestNewIdentity_MissingImageRef(t *testing.T) {
	attrs := validAttrs()
	attrs.ImageRef = ""
	if _, err := NewIdentity(attrs); err == nil {
		t.Fatal("expected error for missing image reference")
	}
}

func TestReputationBand(t *testing.T) {
	tests := []struct {
		score float64
		want  ReputationBand
	}{
		{9.0, ReputationExcellent},
		{8.0, ReputationExcellent},
		{6.5, ReputationGood},
		{4.0, ReputationAverage},
		{1.0, ReputationPoor},
	}
	for _, tc := range tests {
		attrs := validAttrs()
		attrs.Reputation = tc.score
		ident := ReconstructIdentity("id-1", attrs, 0, 0)
		if got := ident.ReputationBand(); got != tc.want {
			t.Errorf("ReputationBand(%g) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
