package document

import "fmt"

// NewWall returns a wall element whose id derives from "wall/<name>".
func NewWall(name string, data WallData) *Element {
	return &Element{
		ID:       NewElementID("wall/" + name),
		Category: CategoryWall,
		Name:     name,
		Data:     data,
	}
}

// NewSlab returns a floor, roof or ceiling element. It panics for other
// categories.
func NewSlab(cat Category, name string, data SlabData) *Element {
	var payload ElementData
	switch cat {
	case CategoryFloor:
		payload = FloorData{data}
	case CategoryRoof:
		payload = RoofData{data}
	case CategoryCeiling:
		payload = CeilingData{data}
	default:
		panic(fmt.Sprintf("document: %s is not a slab category", cat))
	}
	return &Element{
		ID:       NewElementID(cat.String() + "/" + name),
		Category: cat,
		Name:     name,
		Data:     payload,
	}
}

// NewInsert returns a window, door or opening hosted by host.
func NewInsert(cat Category, name string, host *Element, data OpeningData) *Element {
	return &Element{
		ID:       NewElementID(cat.String() + "/" + host.Name + "/" + name),
		Category: cat,
		Name:     name,
		Host:     host.ID,
		Data:     data,
	}
}
