package packgroup

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParsedItem is one ASIN row of a pack group sheet.
type ParsedItem struct {
	ASIN             string
	SKU              string
	Title            string
	PrepType         string
	FNSKU            string
	ExpectedQuantity int
}

// ParsedGroup is the content of one pack group sheet.
type ParsedGroup struct {
	Name     string
	BoxCount int
	Items    []ParsedItem
}

var (
	boxColumn   = regexp.MustCompile(`^box \d+ quantity$`)
	groupPrefix = regexp.MustCompile(`(?i)pack group `)
	spaces      = regexp.MustCompile(`\s+`)
)

// column aliases, normalised
var headerAliases = map[string]string{
	"asin":              "asin",
	"expected quantity": "expected",
	"quantity":          "expected",
	"units":             "expected",
	"merchant sku":      "sku",
	"sku":               "sku",
	"title":             "title",
	"product title":     "title",
	"prep type":         "prep",
	"fnsku":             "fnsku",
}

func norm(s string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// BoxPrefix shortens a pack group name for box labels: "Pack Group 1" -> "P1".
func BoxPrefix(groupName string) string {
	p := groupPrefix.ReplaceAllString(groupName, "P")
	return strings.ReplaceAll(p, " ", "")
}

// BoxNames returns {prefix}-B1 .. {prefix}-Bn.
func BoxNames(groupName string, n int) []string {
	prefix := BoxPrefix(groupName)
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-B%d", prefix, i+1)
	}
	return out
}

func splitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rec, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}

// ParsePackGroupCSV reads an Amazon pack group sheet. fileName names the group
// when the sheet carries no name line.
func ParsePackGroupCSV(fileName string, data []byte) (*ParsedGroup, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	g := &ParsedGroup{}
	explicitBoxes := -1
	headerBoxes := 0
	var cols map[string]int
	inItems, itemsDone := false, false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if inItems {
				inItems, itemsDone = false, true
			}
			continue
		}
		rec, err := splitLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if blank(rec) {
			if inItems {
				inItems, itemsDone = false, true
			}
			continue
		}

		first := norm(rec[0])
		value := ""
		if len(rec) > 1 {
			value = rec[1]
		}
		switch {
		case first == "pack group name" || first == "pack group":
			if g.Name == "" {
				g.Name = value
			}
			continue
		case strings.HasPrefix(first, "pack group:"):
			if g.Name == "" {
				g.Name = strings.TrimSpace(rec[0][strings.Index(rec[0], ":")+1:])
			}
			continue
		case first == "number of boxes" || first == "total boxes" || first == "box count":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid box count %q", lineNo, value)
			}
			explicitBoxes = n
			continue
		case strings.HasPrefix(first, "name of box"):
			if inItems {
				inItems, itemsDone = false, true
			}
			continue
		}

		if cols == nil && !itemsDone {
			if c, boxes, ok := headerColumns(rec); ok {
				cols, headerBoxes, inItems = c, boxes, true
			}
			continue
		}
		if !inItems {
			continue
		}

		item, err := parseItem(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		g.Items = append(g.Items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, fmt.Errorf("no header row with ASIN and Expected quantity columns")
	}

	if g.Name == "" {
		g.Name = strings.TrimSpace(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	}
	if g.Name == "" {
		return nil, fmt.Errorf("no pack group name in the sheet or the file name")
	}
	switch {
	case explicitBoxes >= 0:
		g.BoxCount = explicitBoxes
	default:
		g.BoxCount = headerBoxes
	}
	if g.BoxCount < 1 {
		g.BoxCount = 1
	}
	return g, nil
}

func headerColumns(rec []string) (map[string]int, int, bool) {
	cols := map[string]int{}
	boxes := 0
	for i, h := range rec {
		n := norm(h)
		if boxColumn.MatchString(n) {
			boxes++
			continue
		}
		if key, ok := headerAliases[n]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	_, hasASIN := cols["asin"]
	_, hasExpected := cols["expected"]
	return cols, boxes, hasASIN && hasExpected
}

func parseItem(rec []string, cols map[string]int) (ParsedItem, error) {
	get := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	item := ParsedItem{
		ASIN:     strings.ToUpper(get("asin")),
		SKU:      get("sku"),
		Title:    get("title"),
		PrepType: get("prep"),
		FNSKU:    strings.ToUpper(get("fnsku")),
	}
	if item.ASIN == "" {
		return item, fmt.Errorf("missing ASIN")
	}
	raw := get("expected")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return item, fmt.Errorf("ASIN %s: invalid expected quantity %q", item.ASIN, raw)
	}
	if n < 0 {
		return item, fmt.Errorf("ASIN %s: negative expected quantity %d", item.ASIN, n)
	}
	item.ExpectedQuantity = n
	return item, nil
}
