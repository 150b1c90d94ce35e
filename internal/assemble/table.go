package assemble

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// Table is the first table of one export file.
// Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable extracts the first table of an HTML export.
//
// Leading rows inside <thead> or made only of <th> cells form the header;
// the first of them names the columns. Without such rows the columns are
// named by position ("0", "1", ...) and every row is data. Header-like rows
// further down are data too. Short rows are padded with empty cells and
// long rows are cut to the header width.
func ParseTable(data []byte) (*Table, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return nil, fmt.Errorf("failed to detect encoding: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	// Rows of nested tables belong to those tables.
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
	if rows.Length() == 0 {
		return nil, ErrEmptyTable
	}

	lead := 0
	for lead < rows.Length() && isHeaderRow(rows.Eq(lead)) {
		lead++
	}

	t := &Table{}
	if lead > 0 {
		t.Header = headerNames(cellTexts(rows.Eq(0)))
	}

	var body [][]string
	width := 0
	rows.Slice(lead, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			return
		}
		body = append(body, cells)
		width = max(width, len(cells))
	})

	if len(t.Header) == 0 {
		t.Header = positionalNames(width)
	}
	if len(t.Header) == 0 || len(body) == 0 {
		return nil, ErrEmptyTable
	}

	t.Rows = make([][]string, 0, len(body))
	for _, cells := range body {
		t.Rows = append(t.Rows, fit(cells, len(t.Header)))
	}

	return t, nil
}

func isHeaderRow(tr *goquery.Selection) bool {
	if tr.Parent().Is("thead") {
		return true
	}
	cells := tr.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Length() == cells.Filter("th").Length()
}

func cellTexts(tr *goquery.Selection) []string {
	cells := tr.ChildrenFiltered("th, td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, normalize(cell.Text()))
	})
	return texts
}

// normalize collapses runs of whitespace and composes the text to NFC.
func normalize(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// headerNames names blank columns "Unnamed: i" and suffixes repeated
// names with ".1", ".2", ...
func headerNames(cells []string) []string {
	names := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		if n := seen[c]; n > 0 {
			seen[c] = n + 1
			c = c + "." + strconv.Itoa(n)
		} else {
			seen[c] = 1
		}
		names[i] = c
	}
	return names
}

// positionalNames names width columns "0", "1", ...
func positionalNames(width int) []string {
	names := make([]string, width)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// fit pads or cuts cells to width.
func fit(cells []string, width int) []string {
	if len(cells) == width {
		return cells
	}
	row := make([]string, width)
	copy(row, cells)
	return row
}
