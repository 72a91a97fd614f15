package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/store"
)

type EventService struct {
	store     store.EventInfoStore
	logistics models.EventLogistics
	log       zerolog.Logger
}

func NewEventService(events store.EventInfoStore, logistics models.EventLogistics, log zerolog.Logger) *EventService {
	return &EventService{
		store:     events,
		logistics: logistics,
		log:       log.With().Str("component", "event").Logger(),
	}
}

func (s *EventService) Info(ctx context.Context) (models.EventInfo, error) {
	return s.store.Get(ctx)
}

func (s *EventService) Logistics() models.EventLogistics {
	return s.logistics
}

// Update stores title and subtitle independently. A blank field is reported as
// a validation error but does not stop the other field from being saved.
func (s *EventService) Update(ctx context.Context, title, subtitle string) (models.EventInfo, error) {
	title = strings.TrimSpace(title)
	subtitle = strings.TrimSpace(subtitle)

	var blank []string
	if title == "" {
		blank = append(blank, "title")
	} else if err := s.store.SetTitle(ctx, title); err != nil {
		return models.EventInfo{}, err
	}
	if subtitle == "" {
		blank = append(blank, "subtitle")
	} else if err := s.store.SetSubtitle(ctx, subtitle); err != nil {
		return models.EventInfo{}, err
	}

	info, err := s.store.Get(ctx)
	if err != nil {
		return models.EventInfo{}, err
	}
	if len(blank) > 0 {
		s.log.Warn().Strs("fields", blank).Msg("blank event fields ignored")
		return info, fmt.Errorf("%w: %s cannot be empty", apperrors.ErrValidation, strings.Join(blank, " and "))
	}

	s.log.Info().Str("title", info.Title).Msg("event info updated")
	return info, nil
}
