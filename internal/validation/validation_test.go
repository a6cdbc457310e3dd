package validation

import "testing"

func TestValidEmail(t *testing.T) {
	valids := []string{"a@b.co", "john.doe@example.com", "x+tag@sub.example.org"}
	for _, v := range valids {
		if !ValidEmail(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	invalids := []string{"", "plain", "a@b", "John <john@example.com>", "@example.com", "a b@example.com"}
	for _, v := range invalids {
		if ValidEmail(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidDomain(t *testing.T) {
	for _, v := range []string{"acme.com", "api.acme.io", "ACME.COM", "a-b.example.org"} {
		if !ValidDomain(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", "acme", "-acme.com", "acme-.com", "ac me.com", "acme..com"} {
		if ValidDomain(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidPhone(t *testing.T) {
	for _, v := range []string{"+54 11 5555-1234", "(555) 123 4567", "5551234567"} {
		if !ValidPhone(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", "call me", "555#123"} {
		if ValidPhone(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestCheckerReportsFirstProblemPerField(t *testing.T) {
	var c Checker
	if c.Required("email", "") {
		c.Email("email", "")
	}
	c.MinLen("password", "short", 8)
	c.MaxLen("password", "short", 2)
	c.OneOf("role", "root", "customer", "manager", "admin")

	if c.OK() {
		t.Fatal("expected problems")
	}
	got := c.Problems()
	if len(got) != 3 {
		t.Fatalf("expected 3 problems, got %d: %+v", len(got), got)
	}
	if got[0].Field != "email" || got[0].Message != "is required" {
		t.Fatalf("unexpected first problem: %+v", got[0])
	}
	if got[1].Message != "must be at least 8 characters" {
		t.Fatalf("unexpected password problem: %+v", got[1])
	}
}
