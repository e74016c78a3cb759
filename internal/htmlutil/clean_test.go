package htmlutil

import "testing"

func TestToText(t *testing.T) {
	got := ToText("<html><body><h1>Server Error</h1>\n<p>Fichier  T2m.nc introuvable</p></body></html>")
	if got != "Server Error Fichier T2m.nc introuvable" {
		t.Errorf("ToText = %q", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"<!DOCTYPE html><html></html>", true},
		{"  <html><body>oops</body></html>", true},
		{"<h1>Bad Gateway</h1>", true},
		{`{"error": "Région manquante"}`, false},
		{"plain text", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeHTML(tt.body); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
