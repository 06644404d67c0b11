package model

// Table status values. A table is occupied exactly while an open order
// references it; the order service owns every transition.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table is a physical dining table. Status is derived state: it is never
// written directly by callers, only flipped by order transitions.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – human readable label ("Table 1").
//  Capacity – number of seats.
//  Status   – available, occupied or reserved.
type Table struct {
	ID       int64  `json:"id"`       // tables.id
	Name     string `json:"name"`     // tables.name
	Capacity int    `json:"capacity"` // tables.capacity
	Status   string `json:"status"`   // tables.status
}
