package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads the main document part of the OOXML container and
// collects the text runs, one line per paragraph.
func extractDOCX(raw []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	part, err := archive.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer part.Close()

	return collectDocxText(part)
}

func collectDocxText(part io.Reader) (string, error) {
	decoder := xml.NewDecoder(part)

	var builder strings.Builder
	var inText bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}
	return strings.TrimSpace(builder.String()), nil
}
