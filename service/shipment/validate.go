package shipment

import (
	"fmt"
	"strings"

	packingEntity "fbadash/model/entity/packing"
	"fbadash/service/packing"
)

// ExportError is one reason a shipment cannot be exported yet.
type ExportError struct {
	PackGroup string `json:"pack_group"`
	Box       string `json:"box,omitempty"`
	ASIN      string `json:"asin,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
	Message   string `json:"message"`
}

type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Errors []ExportError `json:"errors"`
}

// ValidationError is returned by ExportShipment for a shipment that is not
// ready. It carries the full list of problems.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Result.Errors))
	for i, ee := range e.Result.Errors {
		msgs[i] = ee.Message
	}
	return "shipment not ready for export: " + strings.Join(msgs, "; ")
}

// ValidateShipmentForExport checks every pack group, item and box and reports
// all problems found. A shipment is valid when every group has items and
// boxes, every item is fully allocated and every box has all four dimensions.
func ValidateShipmentForExport(s *packingEntity.Shipment) ValidationResult {
	res := ValidationResult{Errors: []ExportError{}}
	for gi := range s.PackGroups {
		grp := &s.PackGroups[gi]
		if len(grp.Items) == 0 {
			res.Errors = append(res.Errors, ExportError{PackGroup: grp.Name, Message: fmt.Sprintf("%s has no items", grp.Name)})
		}
		if len(grp.Boxes) == 0 {
			res.Errors = append(res.Errors, ExportError{PackGroup: grp.Name, Message: fmt.Sprintf("%s has no boxes", grp.Name)})
		}
		for ii := range grp.Items {
			it := &grp.Items[ii]
			remaining := packing.Remaining(it)
			if remaining == 0 {
				continue
			}
			msg := fmt.Sprintf("ASIN %s: %d units unallocated", it.ASIN, remaining)
			if remaining < 0 {
				msg = fmt.Sprintf("ASIN %s: over-allocated by %d units", it.ASIN, -remaining)
			}
			res.Errors = append(res.Errors, ExportError{PackGroup: grp.Name, ASIN: it.ASIN, Remaining: remaining, Message: msg})
		}
		for _, b := range grp.Boxes {
			var missing []string
			if !(b.Weight > 0) {
				missing = append(missing, "weight")
			}
			if !(b.Width > 0) {
				missing = append(missing, "width")
			}
			if !(b.Length > 0) {
				missing = append(missing, "length")
			}
			if !(b.Height > 0) {
				missing = append(missing, "height")
			}
			if len(missing) > 0 {
				res.Errors = append(res.Errors, ExportError{
					PackGroup: grp.Name,
					Box:       b.Name,
					Message:   fmt.Sprintf("Box %s: missing %s", b.Name, strings.Join(missing, ", ")),
				})
			}
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}
