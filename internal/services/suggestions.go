package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/repositories"
)

// Suggestions produces trip ideas from two sources: the user's own visit
// history and an external LLM. Both flows run in the background; failures
// are logged and the user simply receives nothing from the failed source.
type Suggestions struct {
	trips     repositories.TripRepository
	waypoints repositories.WaypointRepository
	notifier  Notifier
	llm       LLMClient
	log       *logger.Logger
}

// NewSuggestions builds the service. llm may be nil, disabling that flow.
func NewSuggestions(log *logger.Logger, trips repositories.TripRepository, waypoints repositories.WaypointRepository, notifier Notifier, llm LLMClient) *Suggestions {
	return &Suggestions{
		trips:     trips,
		waypoints: waypoints,
		notifier:  notifier,
		llm:       llm,
		log:       log.With("service", "Suggestions"),
	}
}

// Send fires both suggestion flows and returns immediately.
func (s *Suggestions) Send(ctx context.Context, userID int64) {
	go s.sendFromHistory(ctx, userID)
	go s.sendFromLLM(ctx, userID)
}

func (s *Suggestions) sendFromHistory(ctx context.Context, userID int64) {
	visited, err := s.visitedNames(ctx, userID)
	if err != nil {
		s.log.Warn("History suggestions failed", "user_id", userID, "error", err)
		return
	}
	for _, name := range visited {
		s.notifier.SendMessage(userID,
			fmt.Sprintf("Explore around %s: you visited %q, how about more nearby sights?", name, name))
	}
}

func (s *Suggestions) sendFromLLM(ctx context.Context, userID int64) {
	if s.llm == nil {
		return
	}
	visited, err := s.visitedNames(ctx, userID)
	if err != nil {
		s.log.Warn("LLM suggestions failed", "user_id", userID, "error", err)
		return
	}
	if len(visited) == 0 {
		return
	}

	suggestions, err := s.llm.SuggestTrips(ctx, visited)
	if err != nil {
		s.log.Warn("LLM suggestions failed", "user_id", userID, "error", err)
		return
	}
	for _, sg := range suggestions {
		s.notifier.SendMessage(userID, fmt.Sprintf("%s: %s", sg.Title, sg.Description))
	}
}

// visitedNames collects the distinct names of visited waypoints across all
// the user's trips, in a stable order.
func (s *Suggestions) visitedNames(ctx context.Context, userID int64) ([]string, error) {
	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, trip := range trips {
		waypoints, err := s.waypoints.ListByTrip(ctx, trip.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list waypoints: %w", err)
		}
		for _, wp := range waypoints {
			if wp.Visited && !seen[wp.Name] {
				seen[wp.Name] = true
				names = append(names, wp.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
