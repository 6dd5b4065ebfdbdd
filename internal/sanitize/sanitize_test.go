package sanitize

import (
	"strings"
	"testing"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"привет", "privet"},
		{"Привет мир", "Privet mir"},
		{"отчёт", "otchyot"},
		{"Щука", "Shchuka"},
		{"объём", "obyom"},    // hard sign dropped
		{"день", "den"},       // soft sign dropped
		{"mixed-Яzык_1", "mixed-Yazyk_1"},
		{"plain ascii.txt", "plain ascii.txt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Transliterate(tt.in); got != tt.want {
			t.Errorf("Transliterate(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cyrillic with space", "Привет мир.txt", "Privet_mir.txt"},
		{"plain", "report.pdf", "report.pdf"},
		{"spaces", "my summer photo.jpg", "my_summer_photo.jpg"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\admin\доклад.doc`, "doklad.doc"},
		{"hidden file", ".bashrc", "bashrc"},
		{"only dots", "...", "file"},
		{"empty", "", "file"},
		{"slash only", "///", "file"},
		{"unsafe chars", "a|b<c>d?.txt", "a_b_c_d_.txt"},
		{"soft and hard signs", "Весьма объёмно.ogg", "Vesma_obyomno.ogg"},
		{"unicode outside table", "résumé.pdf", "r_sum_.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.in); got != tt.want {
				t.Errorf("Name(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Привет мир.txt",
		"../../etc/passwd",
		"...",
		"",
		"weird |name|.tar.gz",
		"ПРИВЕТ.МИР",
		strings.Repeat("я", 300) + ".bin",
	}
	for _, in := range inputs {
		once := Name(in)
		twice := Name(once)
		if once != twice {
			t.Errorf("Name not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestName_AlwaysSafe(t *testing.T) {
	inputs := []string{
		"", "..", "../..", "/", `\\server\share\file`,
		"normal.txt", "..hidden", "a/../../b", strings.Repeat(".", 500),
		"файл с пробелами и ..точками.mp3",
	}
	for _, in := range inputs {
		got := Name(in)
		if got == "" {
			t.Errorf("Name(%q) returned empty string", in)
		}
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("Name(%q) = %q contains a path separator", in, got)
		}
		if strings.Contains(got, "..") && got == ".." {
			t.Errorf("Name(%q) = %q is a traversal segment", in, got)
		}
		if strings.HasPrefix(got, ".") {
			t.Errorf("Name(%q) = %q starts with a dot", in, got)
		}
	}
}
