package mongo

import "testing"

func TestConnectionURI(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"localhost:27017", "mongodb://localhost:27017"},
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
		{"mongodb+srv://cluster.example.com", "mongodb+srv://cluster.example.com"},
	}
	for _, tc := range cases {
		if got := connectionURI(tc.address); got != tc.want {
			t.Errorf("connectionURI(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}
