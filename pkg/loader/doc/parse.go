package doc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const documentXMLMax = 50 << 20

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// docxState tracks position inside the document XML while streaming
// tokens: whether the cursor is inside a text run, a tracked deletion,
// or a table cell.
type docxState struct {
	inText   bool
	delDepth int
	inTable  bool
	cellIdx  int
}

// parseDocx extracts the plain text of a .docx file. Paragraphs and
// table rows become lines, table cells are tab-separated, and tracked
// deletions are skipped.
func parseDocx(content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("document.xml not found in docx")
	}
	if docFile.UncompressedSize64 > documentXMLMax {
		return nil, fmt.Errorf("document.xml too large: %d bytes", docFile.UncompressedSize64)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, int64(documentXMLMax)))

	var sb strings.Builder
	st := docxState{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			handleStart(&sb, &st, t.Name.Local)
		case xml.EndElement:
			handleEnd(&sb, &st, t.Name.Local)
		case xml.CharData:
			if st.delDepth == 0 && st.inText {
				sb.Write(t)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	return []byte(text), nil
}

func handleStart(sb *strings.Builder, st *docxState, name string) {
	switch name {
	case "del":
		st.delDepth++
	case "t":
		st.inText = true
	case "tab":
		if st.delDepth == 0 {
			sb.WriteRune('\t')
		}
	case "br", "cr":
		if st.delDepth == 0 {
			sb.WriteByte('\n')
		}
	case "noBreakHyphen":
		if st.delDepth == 0 {
			sb.WriteRune('-')
		}
	case "tbl":
		st.inTable = true
		st.cellIdx = 0
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	case "tr":
		st.cellIdx = 0
	case "tc":
		if st.inTable && st.delDepth == 0 {
			if st.cellIdx > 0 {
				sb.WriteRune('\t')
			}
			st.cellIdx++
		}
	}
}

func handleEnd(sb *strings.Builder, st *docxState, name string) {
	switch name {
	case "t":
		st.inText = false
	case "p", "tr":
		if st.delDepth == 0 {
			sb.WriteByte('\n')
		}
	case "tbl":
		st.inTable = false
		if st.delDepth == 0 {
			sb.WriteByte('\n')
		}
	case "del":
		if st.delDepth > 0 {
			st.delDepth--
		}
	}
}
