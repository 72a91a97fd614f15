package models

import "time"

const (
	DefaultEventTitle    = "Conferência de Discipulado"
	DefaultEventSubtitle = "Discipulado e Legado - Formando a Próxima Geração"
)

// EventInfo is the display title and subtitle shown on the home page and on tickets.
type EventInfo struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Title     string    `gorm:"not null;default:''" json:"title"`
	Subtitle  string    `gorm:"not null;default:''" json:"subtitle"`
	UpdatedAt time.Time `json:"-"`
}

// EventInfoID is the primary key of the single event_infos row.
const EventInfoID uint = 1

// WithDefaults fills blank fields with the built-in title and subtitle.
func (e EventInfo) WithDefaults() EventInfo {
	if e.Title == "" {
		e.Title = DefaultEventTitle
	}
	if e.Subtitle == "" {
		e.Subtitle = DefaultEventSubtitle
	}
	return e
}

// EventLogistics is the static date, time and venue printed on every ticket.
type EventLogistics struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
}
