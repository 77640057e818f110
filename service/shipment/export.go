package shipment

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fbadash/core/csvx"
	packingEntity "fbadash/model/entity/packing"
	"fbadash/service/packing"
)

var dimensionHeader = []string{"Name of box", "Box weight (kg):", "Box width (cm):", "Box length (cm):", "Box height (cm):"}

// ExportShipment writes the box-content CSV after checking the shipment is
// complete. An incomplete shipment yields *ValidationError and no output.
func ExportShipment(w io.Writer, s *packingEntity.Shipment) error {
	if res := ValidateShipmentForExport(s); !res.Valid {
		return &ValidationError{Result: res}
	}
	return WriteShipmentCSV(w, s)
}

// WriteShipmentCSV writes the box-content CSV without validating. Groups are
// separated by two blank lines; lines end in LF.
func WriteShipmentCSV(w io.Writer, s *packingEntity.Shipment) error {
	var lines []string
	for gi := range s.PackGroups {
		if gi > 0 {
			lines = append(lines, "", "")
		}
		lines = append(lines, groupLines(&s.PackGroups[gi])...)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(lines, "\n")); err != nil {
		return err
	}
	return bw.Flush()
}

func groupLines(grp *packingEntity.PackGroup) []string {
	boxes := append([]packingEntity.Box(nil), grp.Boxes...)
	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].Position < boxes[j].Position })
	items := append([]packingEntity.PackGroupItem(nil), grp.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderIndex < items[j].OrderIndex })

	lines := []string{csvx.Escape(grp.Name), ""}

	header := []string{"ASIN", "FNSKU", "Boxed quantity"}
	for _, b := range boxes {
		header = append(header, b.Name+" quantity")
	}
	lines = append(lines, csvx.Line(header...))

	for i := range items {
		it := &items[i]
		boxed := it.Boxed()
		row := []string{it.ASIN, it.FNSKU, strconv.Itoa(packing.TotalBoxed(it))}
		for _, b := range boxes {
			row = append(row, strconv.Itoa(boxed[b.ID]))
		}
		lines = append(lines, csvx.Line(row...))
	}

	lines = append(lines, "", csvx.Line(dimensionHeader...))
	for _, b := range boxes {
		lines = append(lines, csvx.Line(b.Name, formatNumber(b.Weight), formatNumber(b.Width), formatNumber(b.Length), formatNumber(b.Height)))
	}
	return lines
}

// formatNumber prints the shortest decimal form, 0 for unset values.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFileName derives a download file name from the shipment name.
func ExportFileName(s *packingEntity.Shipment) string {
	name := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(s.Name), "-"), "-.")
	if name == "" {
		name = "shipment"
	}
	return name + "-box-contents.csv"
}
