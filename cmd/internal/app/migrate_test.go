package app

import "testing"

func TestMigrateURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/gravity", "pgx5://u:p@localhost:5432/gravity"},
		{"postgresql://u:p@localhost:5432/gravity?sslmode=disable", "pgx5://u:p@localhost:5432/gravity?sslmode=disable"},
		{"pgx5://u:p@localhost/gravity", "pgx5://u:p@localhost/gravity"},
	}
	for _, tc := range cases {
		if got := migrateURL(tc.in); got != tc.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
