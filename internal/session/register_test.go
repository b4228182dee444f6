package session

import "testing"

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"  Jane   Mary Doe ", "Jane", "Mary Doe"},
		{"Cher", "Cher", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("SplitName(%q) = %q, %q; want %q, %q", tc.in, first, last, tc.first, tc.last)
		}
	}
}

func TestUsernameFromEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"jane@x.com", "jane", true},
		{"first.last+tag@bank.io", "first.last+tag", true},
		{"@x.com", "", false},
		{"jane@", "", false},
		{"jane", "", false},
	}
	for _, tc := range cases {
		got, ok := UsernameFromEmail(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("UsernameFromEmail(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
