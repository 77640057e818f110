package packing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	packingEntity "fbadash/model/entity/packing"
	packingRepo "fbadash/model/repository/packing"
)

var (
	ErrUnknownItem = errors.New("packing: unknown item")
	ErrUnknownBox  = errors.New("packing: unknown box")
)

// Session holds unsaved allocation edits for one shipment on top of the
// committed graph. It is not safe for concurrent use.
type Session struct {
	repo       *packingRepo.PackingRepository
	weights    *WeightResolver
	userID     string
	shipmentID string

	graph   *Graph
	pending map[string]map[string]int
}

// SaveResult reports what a save wrote.
type SaveResult struct {
	ItemsUpdated  int             `json:"items_updated"`
	GroupsTouched int             `json:"groups_touched"`
	Shipment      ShipmentSummary `json:"shipment"`
}

// NewSession loads the committed graph of the shipment.
func NewSession(ctx context.Context, repo *packingRepo.PackingRepository, weights *WeightResolver, userID, shipmentID string) (*Session, error) {
	g, err := LoadGraph(ctx, repo, weights, userID, shipmentID)
	if err != nil {
		return nil, err
	}
	return &Session{
		repo:       repo,
		weights:    weights,
		userID:     userID,
		shipmentID: shipmentID,
		graph:      g,
		pending:    map[string]map[string]int{},
	}, nil
}

// Graph is the committed state as of the last load or save.
func (s *Session) Graph() *Graph {
	return s.graph
}

// SetQuantity parses raw as an integer. Anything unparsable counts as 0 and
// negatives are clamped to 0.
func (s *Session) SetQuantity(itemID, boxID, raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 0
	}
	return s.SetQuantityInt(itemID, boxID, n)
}

func (s *Session) SetQuantityInt(itemID, boxID string, n int) error {
	it, grp := s.graph.item(itemID)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !hasBox(grp, boxID) {
		return fmt.Errorf("%w: %s in %s", ErrUnknownBox, boxID, grp.Name)
	}
	if n < 0 {
		n = 0
	}
	if s.pending[itemID] == nil {
		s.pending[itemID] = map[string]int{}
	}
	s.pending[itemID][boxID] = n
	return nil
}

// Discard drops every unsaved edit.
func (s *Session) Discard() {
	s.pending = map[string]map[string]int{}
}

// Pending returns a copy of the unsaved edits keyed by item then box.
func (s *Session) Pending() map[string]map[string]int {
	out := make(map[string]map[string]int, len(s.pending))
	for itemID, boxes := range s.pending {
		cp := make(map[string]int, len(boxes))
		for k, v := range boxes {
			cp[k] = v
		}
		out[itemID] = cp
	}
	return out
}

func (s *Session) IsDirty() bool {
	return len(s.pending) > 0
}

// merged is the committed map of an item with its pending edits applied.
// Zero entries are dropped.
func (s *Session) merged(it *packingEntity.PackGroupItem) packingEntity.BoxedQuantities {
	q := it.Boxed()
	for boxID, n := range s.pending[it.ID] {
		q[boxID] = n
	}
	for boxID, n := range q {
		if n == 0 {
			delete(q, boxID)
		}
	}
	return q
}

// View is the graph a user sees: committed values overlaid with pending edits.
func (s *Session) View() *Graph {
	v := s.graph.clone()
	for gi := range v.Shipment.PackGroups {
		grp := &v.Shipment.PackGroups[gi]
		for ii := range grp.Items {
			it := &grp.Items[ii]
			if _, ok := s.pending[it.ID]; ok {
				it.SetBoxed(s.merged(it))
			}
		}
	}
	return v
}

// Save writes every edited item as a full map replace, recomputes the
// totals and reloads. On error nothing is committed and the pending edits
// stay in place.
func (s *Session) Save(ctx context.Context) (*SaveResult, error) {
	if !s.IsDirty() {
		return &SaveResult{Shipment: s.graph.Summary()}, nil
	}

	itemIDs := make([]string, 0, len(s.pending))
	for id := range s.pending {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	groups := map[string]bool{}
	err := s.repo.Transaction(ctx, func(tx *packingRepo.PackingRepository) error {
		for _, id := range itemIDs {
			it, grp := s.graph.item(id)
			if it == nil {
				return fmt.Errorf("%w: %s", ErrUnknownItem, id)
			}
			if err := tx.ReplaceItemBoxed(ctx, s.userID, id, s.merged(it)); err != nil {
				return fmt.Errorf("save item %s: %w", it.ASIN, err)
			}
			groups[grp.ID] = true
		}
		return RecomputeTotals(ctx, tx, s.userID, s.shipmentID, s.graph.Weights)
	})
	if err != nil {
		return nil, err
	}

	g, err := LoadGraph(ctx, s.repo, s.weights, s.userID, s.shipmentID)
	if err != nil {
		return nil, fmt.Errorf("reload shipment: %w", err)
	}
	s.graph = g
	s.Discard()
	return &SaveResult{ItemsUpdated: len(itemIDs), GroupsTouched: len(groups), Shipment: g.Summary()}, nil
}

// SaveChanges applies complete desired box maps per item in one save. Boxes
// missing from an item's map are cleared.
func SaveChanges(ctx context.Context, repo *packingRepo.PackingRepository, weights *WeightResolver, userID, shipmentID string, changes map[string]map[string]int) (*SaveResult, error) {
	sess, err := NewSession(ctx, repo, weights, userID, shipmentID)
	if err != nil {
		return nil, err
	}
	for itemID, desired := range changes {
		it, _ := sess.graph.item(itemID)
		if it == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
		}
		for boxID := range it.Boxed() {
			if _, keep := desired[boxID]; !keep {
				if err := sess.SetQuantityInt(itemID, boxID, 0); err != nil {
					return nil, err
				}
			}
		}
		for boxID, n := range desired {
			if err := sess.SetQuantityInt(itemID, boxID, n); err != nil {
				return nil, err
			}
		}
	}
	return sess.Save(ctx)
}
