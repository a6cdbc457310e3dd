package types

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]struct {
		want Role
		ok   bool
	}{
		"admin":      {RoleAdmin, true},
		" Manager ":  {RoleManager, true},
		"CUSTOMER":   {RoleCustomer, true},
		"superadmin": {Role("superadmin"), false},
		"":           {Role(""), false},
	}
	for in, tc := range cases {
		got, ok := ParseRole(in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q) = %q,%v; want %q,%v", in, got, ok, tc.want, tc.ok)
		}
	}
}
