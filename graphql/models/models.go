package models

import gql "github.com/graph-gophers/graphql-go"

// --- Shipment ---

type ShipmentHeader struct {
	ID          gql.ID
	Name        string
	TotalAsins  int32
	TotalUnits  int32
	TotalWeight float64
	CreatedAt   string
}

type Shipment struct {
	ID          gql.ID
	Name        string
	TotalAsins  int32
	TotalUnits  int32
	TotalWeight float64
	PackGroups  []*PackGroup
}

type PackGroup struct {
	ID          gql.ID
	Name        string
	TotalBoxes  int32
	TotalUnits  int32
	TotalWeight float64
	Boxes       []*Box
	Items       []*PackItem
}

type Box struct {
	ID            gql.ID
	Name          string
	Position      int32
	Weight        float64
	Width         float64
	Length        float64
	Height        float64
	TotalUnits    int32
	ContentWeight float64
}

type PackItem struct {
	ID               gql.ID
	Asin             string
	Fnsku            string
	Sku              string
	Title            string
	PrepType         string
	ExpectedQuantity int32
	TotalBoxed       int32
	Remaining        int32
	Weight           float64
	Allocations      []*Allocation
}

type Allocation struct {
	BoxID    gql.ID
	Quantity int32
}

// --- Export validation ---

type ExportValidation struct {
	Valid  bool
	Errors []*ExportError
}

type ExportError struct {
	PackGroup string
	Box       *string
	Asin      *string
	Remaining *int32
	Message   string
}

// --- Catalog ---

type Asin struct {
	ID         gql.ID
	Code       string
	Fnsku      string
	Title      string
	Weight     float64
	WeightUnit string
	CostPrice  float64
	SellPrice  float64
}
