package shipment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type ParsedBox struct {
	Name   string
	Weight float64
	Width  float64
	Length float64
	Height float64
}

type ParsedItem struct {
	ASIN       string
	FNSKU      string
	TotalBoxed int
	PerBox     []int
}

// ParsedGroup is one pack group read back from a box-content CSV. PerBox of
// each item follows the order of Boxes.
type ParsedGroup struct {
	Name  string
	Boxes []ParsedBox
	Items []ParsedItem
}

// Mismatches lists items whose boxed total differs from the sum of their
// per-box quantities.
func (g ParsedGroup) Mismatches() []string {
	var out []string
	for _, it := range g.Items {
		sum := 0
		for _, n := range it.PerBox {
			sum += n
		}
		if sum != it.TotalBoxed {
			out = append(out, fmt.Sprintf("%s: ASIN %s boxed %d but boxes hold %d", g.Name, it.ASIN, it.TotalBoxed, sum))
		}
	}
	return out
}

const (
	wantName = iota
	wantHeader
	inItems
	inBoxes
)

// ParseShipmentCSV reads a file produced by WriteShipmentCSV.
func ParseShipmentCSV(r io.Reader) ([]ParsedGroup, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var groups []ParsedGroup
	var cur *ParsedGroup
	var boxNames []string
	state := wantName
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		switch state {
		case wantName, inBoxes:
			if len(rec) == 1 {
				groups = append(groups, ParsedGroup{Name: rec[0]})
				cur = &groups[len(groups)-1]
				state = wantHeader
				continue
			}
			if state == wantName {
				return nil, fmt.Errorf("line %d: expected pack group name", line)
			}
			if len(rec) != 5 {
				return nil, fmt.Errorf("line %d: box row has %d fields, want 5", line, len(rec))
			}
			b := ParsedBox{Name: rec[0]}
			dims := []*float64{&b.Weight, &b.Width, &b.Length, &b.Height}
			for i, p := range dims {
				if *p, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
					return nil, fmt.Errorf("line %d: box %s: %w", line, b.Name, err)
				}
			}
			cur.Boxes = append(cur.Boxes, b)

		case wantHeader:
			if len(rec) < 3 || rec[0] != "ASIN" {
				return nil, fmt.Errorf("line %d: expected item header", line)
			}
			boxNames = boxNames[:0]
			for _, h := range rec[3:] {
				boxNames = append(boxNames, strings.TrimSuffix(h, " quantity"))
			}
			state = inItems

		case inItems:
			if rec[0] == "Name of box" {
				state = inBoxes
				continue
			}
			if len(rec) != 3+len(boxNames) {
				return nil, fmt.Errorf("line %d: item row has %d fields, want %d", line, len(rec), 3+len(boxNames))
			}
			it := ParsedItem{ASIN: rec[0], FNSKU: rec[1]}
			if it.TotalBoxed, err = strconv.Atoi(rec[2]); err != nil {
				return nil, fmt.Errorf("line %d: boxed quantity: %w", line, err)
			}
			for _, f := range rec[3:] {
				n, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: box quantity: %w", line, err)
				}
				it.PerBox = append(it.PerBox, n)
			}
			cur.Items = append(cur.Items, it)
		}
	}

	for gi := range groups {
		g := &groups[gi]
		if len(g.Boxes) > 0 && len(g.Items) > 0 && len(g.Boxes) != len(g.Items[0].PerBox) {
			return nil, fmt.Errorf("%s: %d box rows for %d box columns", g.Name, len(g.Boxes), len(g.Items[0].PerBox))
		}
	}
	if state == wantHeader || state == inItems {
		return nil, fmt.Errorf("unexpected end of file")
	}
	return groups, nil
}
