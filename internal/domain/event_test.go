package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validEvent() *Event {
	return &Event{
		Title:       "Go Day",
		Description: "desc",
		Overview:    "overview",
		Image:       "/img.png",
		Venue:       "Hall",
		Location:    "Berlin",
		Date:        "2025-11-07",
		Time:        "09:30",
		Mode:        ModeOnline,
		Audience:    "Developers",
		Agenda:      []string{"Keynote"},
		Organizer:   "Gophers",
		Tags:        []string{"go"},
	}
}

func TestEvent_Validate_LengthCountsCharacters(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(e *Event)
		wantField string
	}{
		{name: "cyrillic title within limit", mutate: func(e *Event) { e.Title = strings.Repeat("Я", 60) }},
		{name: "cyrillic title at limit", mutate: func(e *Event) { e.Title = strings.Repeat("Я", 100) }},
		{name: "cyrillic title over limit", mutate: func(e *Event) { e.Title = strings.Repeat("Я", 101) }, wantField: FieldTitle},
		{name: "multi-byte description within limit", mutate: func(e *Event) { e.Description = strings.Repeat("é", 900) }},
		{name: "multi-byte description over limit", mutate: func(e *Event) { e.Description = strings.Repeat("é", 1001) }, wantField: "description"},
		{name: "emoji overview within limit", mutate: func(e *Event) { e.Overview = strings.Repeat("🎉", 400) }},
		{name: "emoji overview over limit", mutate: func(e *Event) { e.Overview = strings.Repeat("🎉", 501) }, wantField: "overview"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)

			err := e.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Contains(t, ve.Fields, tt.wantField)
		})
	}
}
