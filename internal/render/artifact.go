package render

import (
	"strings"
	"time"
)

// ArtifactName builds the output filename: MGA_<municipio>_<timestamp>.pdf.
// The municipality is folded to a filesystem-safe token.
func ArtifactName(municipality string, t time.Time) string {
	return "MGA_" + sanitize(municipality) + "_" + t.Format("20060102_150405") + ".pdf"
}

var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ñ", "N", "Ü", "U",
)

func sanitize(s string) string {
	s = accentFold.Replace(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "municipio"
	}
	return b.String()
}
