package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

type notebookDocument struct {
	Cells *[]notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// ExtractNotebookSource reassembles the Python text of a notebook's code
// cells. A cell's source is stored either as one string or as a list of
// line fragments; fragments are concatenated unchanged and the cells are
// joined by a newline, preserving document order.
func ExtractNotebookSource(raw []byte) (string, error) {
	var doc notebookDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode notebook: %w", err)
	}
	if doc.Cells == nil {
		return "", fmt.Errorf("notebook has no cells array")
	}

	var cells []string
	for i, cell := range *doc.Cells {
		if cell.CellType != "code" {
			continue
		}
		text, err := decodeCellSource(cell.Source)
		if err != nil {
			return "", fmt.Errorf("cell %d: %w", i, err)
		}
		cells = append(cells, text)
	}
	return strings.Join(cells, "\n"), nil
}

func decodeCellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("code cell has no source")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, ""), nil
	}

	return "", fmt.Errorf("unsupported cell source shape")
}
