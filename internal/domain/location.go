package domain

import "strings"

// Location is a named duty post inside the facility.
type Location string

const (
	LocationControlRoom  Location = "Control Room"
	LocationMedicalRoom  Location = "Medical Room"
	LocationAdminOffice  Location = "Admin Office"
	LocationBlockACells  Location = "Block A - Cells"
	LocationBlockAYard   Location = "Block A - Yard"
	LocationBlockADining Location = "Block A - Dining Room"
	LocationBlockBCells  Location = "Block B - Cells"
	LocationBlockBYard   Location = "Block B - Yard"
	LocationBlockBDining Location = "Block B - Dining Room"
	LocationKitchen      Location = "Kitchen"
	LocationVisitorArea  Location = "Visitor Area"
	LocationWorkshop     Location = "Workshop"
	LocationIsolation    Location = "Isolation"
	LocationMainGate     Location = "Main Gate"
)

// LocationCategory groups locations that share one eligibility rule.
type LocationCategory string

const (
	CategoryControlRoom LocationCategory = "control-room"
	CategoryMedical     LocationCategory = "medical"
	CategoryAdmin       LocationCategory = "admin"
	CategoryBlockA      LocationCategory = "block-a"
	CategoryBlockB      LocationCategory = "block-b"
	CategoryCentral     LocationCategory = "central"
)

// Block identifies a housing block that carries its own coverage invariant.
type Block string

const (
	BlockA Block = "Block A"
	BlockB Block = "Block B"
)

// Blocks lists the housing blocks in enforcement order.
var Blocks = []Block{BlockA, BlockB}

// Key returns the normalized block key ("blocka").
func (b Block) Key() string {
	return NormalizeBlock(string(b))
}

// CellsLocation is where corrective block coverage is placed.
func (b Block) CellsLocation() Location {
	return Location(string(b) + " - Cells")
}

// Category returns the coverage category of the block's locations.
func (b Block) Category() LocationCategory {
	if b == BlockB {
		return CategoryBlockB
	}
	return CategoryBlockA
}

var locationCategories = map[Location]LocationCategory{
	LocationControlRoom:  CategoryControlRoom,
	LocationMedicalRoom:  CategoryMedical,
	LocationAdminOffice:  CategoryAdmin,
	LocationBlockACells:  CategoryBlockA,
	LocationBlockAYard:   CategoryBlockA,
	LocationBlockADining: CategoryBlockA,
	LocationBlockBCells:  CategoryBlockB,
	LocationBlockBYard:   CategoryBlockB,
	LocationBlockBDining: CategoryBlockB,
	LocationKitchen:      CategoryCentral,
	LocationVisitorArea:  CategoryCentral,
	LocationWorkshop:     CategoryCentral,
	LocationIsolation:    CategoryCentral,
	LocationMainGate:     CategoryCentral,
}

// Locations lists the catalogue in display order.
var Locations = []Location{
	LocationControlRoom,
	LocationMedicalRoom,
	LocationAdminOffice,
	LocationBlockACells,
	LocationBlockAYard,
	LocationBlockADining,
	LocationBlockBCells,
	LocationBlockBYard,
	LocationBlockBDining,
	LocationKitchen,
	LocationVisitorArea,
	LocationWorkshop,
	LocationIsolation,
	LocationMainGate,
}

// ParseLocation resolves free text to a catalogue location, ignoring case and surrounding space.
func ParseLocation(raw string) (Location, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, loc := range Locations {
		if strings.EqualFold(trimmed, string(loc)) {
			return loc, true
		}
	}
	return "", false
}

// Category returns the coverage category of l and whether l is in the catalogue.
func (l Location) Category() (LocationCategory, bool) {
	cat, ok := locationCategories[l]
	return cat, ok
}

// InBlock reports whether the location name starts with the block name.
func (l Location) InBlock(b Block) bool {
	return strings.HasPrefix(strings.ToLower(string(l)), strings.ToLower(string(b)))
}
