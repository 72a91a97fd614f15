package models

// TicketType is the category an attendee picks when registering.
type TicketType string

const (
	TicketTypeFull     TicketType = "Inteira"
	TicketTypeHalf     TicketType = "Meia"
	TicketTypeCourtesy TicketType = "Cortesia"
)

// TicketTypes lists every accepted ticket type in display order.
var TicketTypes = []TicketType{TicketTypeFull, TicketTypeHalf, TicketTypeCourtesy}

func (t TicketType) Valid() bool {
	for _, known := range TicketTypes {
		if t == known {
			return true
		}
	}
	return false
}
