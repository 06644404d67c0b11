package model

// Category groups menu items. PrinterName optionally routes kitchen
// tickets for this category to a dedicated printer; empty means the
// default printer from settings.
type Category struct {
	ID          int64   `json:"id"`                     // categories.id
	Name        string  `json:"name"`                   // categories.name
	PrinterName *string `json:"printer_name,omitempty"` // categories.printer_name (nullable)
}
