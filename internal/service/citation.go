package service

import (
	"strings"

	"gymchat/internal/domain"
)

// FormatSourceURI convierte un locator de documento en una etiqueta legible:
// recorta el esquema de storage y los directorios hasta el nombre base, quita
// la extension y normaliza separadores a espacios.
func FormatSourceURI(uri string) string {
	if uri == "" {
		return "Unknown source"
	}

	switch {
	case strings.HasPrefix(uri, "s3://"):
		parts := strings.Split(uri, "/")
		if len(parts) > 3 {
			return cleanFilename(parts[len(parts)-1])
		}
		last := parts[len(parts)-1]
		if last == "" {
			return "S3 Document"
		}
		return last

	case strings.HasPrefix(uri, "http"):
		parts := strings.Split(uri, "/")
		if len(parts) > 2 {
			if last := parts[len(parts)-1]; last != "" {
				return last
			}
			return parts[2]
		}
		return uri

	case strings.ContainsAny(uri, `/\`):
		var filename string
		if strings.Contains(uri, "/") {
			segs := strings.Split(uri, "/")
			filename = segs[len(segs)-1]
		} else {
			segs := strings.Split(uri, `\`)
			filename = segs[len(segs)-1]
		}
		return cleanFilename(filename)
	}

	return uri
}

// CitationLabels deriva etiquetas unicas a partir de los chunks recuperados.
// Dedup por igualdad exacta de etiqueta; gana la primera aparicion y el orden
// de salida es el orden de primera aparicion.
func CitationLabels(chunks []domain.RetrievedChunk) []string {
	labels := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))

	for _, chunk := range chunks {
		if chunk.SourceURI == "" {
			continue
		}
		label := FormatSourceURI(chunk.SourceURI)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func cleanFilename(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		filename = filename[:idx]
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
