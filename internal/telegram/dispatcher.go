package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
	"github.com/ametelkin/tripline/internal/services"
)

const dateLayout = "2006-01-02"

// Collaborator surfaces the dispatcher routes commands to.
type PlannerService interface {
	ListPlanned(ctx context.Context, userID int64) ([]models.Trip, error)
	CreateTrip(ctx context.Context, userID int64, name string, start, end time.Time, points []models.WaypointInput) (*models.TripWithWaypoints, error)
	DeleteTrip(ctx context.Context, tripID int64) error
}

type HistoryService interface {
	ListFinished(ctx context.Context, userID int64) ([]models.Trip, error)
	TripDetails(ctx context.Context, userID, tripID int64) (*models.TripWithWaypoints, error)
	Rate(ctx context.Context, userID, tripID int64, rating int) (*models.Trip, error)
}

type HelperService interface {
	StartTrip(ctx context.Context, tripID int64) error
	HandleLocation(ctx context.Context, chatID, tripID int64, lat, lon float64) error
	MarkVisited(ctx context.Context, waypointID uuid.UUID) (*models.Waypoint, error)
	AddNote(ctx context.Context, waypointID uuid.UUID, note string) (*models.Waypoint, error)
}

type SuggestionService interface {
	Send(ctx context.Context, userID int64)
}

// Notifier mirrors services.Notifier for the dispatcher's own replies.
type Notifier interface {
	SendMessage(chatID int64, text string)
	RequestLocation(chatID int64, prompt string)
}

const helpText = `/planned
/plan name|YYYY-MM-DD|YYYY-MM-DD|point@lat,lon;...
/delete tripId
/start tripId
/mark waypointId
/note waypointId|text
/history
/details tripId
/rate tripId|1-5
/suggest`

// Dispatcher turns inbound updates into domain actions: the location path
// consumes pending location requests, the text path parses and routes
// commands. Every failure a user can cause ends in a chat message, never in
// an error escaping to the poll loop.
type Dispatcher struct {
	state    *State
	notifier Notifier
	planner  PlannerService
	history  HistoryService
	helper   HelperService
	suggest  SuggestionService
	log      *logger.Logger
}

func NewDispatcher(log *logger.Logger, state *State, notifier Notifier, planner PlannerService, history HistoryService, helper HelperService, suggest SuggestionService) *Dispatcher {
	return &Dispatcher{
		state:    state,
		notifier: notifier,
		planner:  planner,
		history:  history,
		helper:   helper,
		suggest:  suggest,
		log:      log.With("component", "Dispatcher"),
	}
}

func (d *Dispatcher) Handle(ctx context.Context, upd Update) error {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	d.state.ObserveUser(chatID)

	if msg.Location != nil {
		return d.handleLocation(ctx, chatID, msg.Location)
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		d.notifier.SendMessage(chatID, "Unknown command. /help")
		return nil
	}

	verb := text
	arg := ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		verb, arg = text[:i], strings.TrimSpace(text[i+1:])
	}
	verb = strings.ToLower(verb)

	var err error
	switch verb {
	case "/help":
		d.notifier.SendMessage(chatID, helpText)
	case "/planned":
		err = d.cmdPlanned(ctx, chatID)
	case "/plan":
		err = d.cmdPlan(ctx, chatID, arg)
	case "/delete":
		err = d.cmdDelete(ctx, chatID, arg)
	case "/start", "/starttrip":
		err = d.cmdStart(ctx, chatID, arg)
	case "/mark":
		err = d.cmdMark(ctx, chatID, arg)
	case "/note":
		err = d.cmdNote(ctx, chatID, arg)
	case "/history":
		err = d.cmdHistory(ctx, chatID)
	case "/details":
		err = d.cmdDetails(ctx, chatID, arg)
	case "/rate":
		err = d.cmdRate(ctx, chatID, arg)
	case "/suggest":
		d.suggest.Send(ctx, chatID)
	default:
		d.notifier.SendMessage(chatID, "Unknown command. /help")
	}

	if err != nil {
		d.log.Error("Command failed", "chat_id", chatID, "verb", verb, "error", err)
		d.notifier.SendMessage(chatID, "Something went wrong, please try again.")
		return fmt.Errorf("%s: %w", verb, err)
	}
	return nil
}

// handleLocation consumes the chat's pending location request, if any, and
// runs geofence matching against that trip's waypoints.
func (d *Dispatcher) handleLocation(ctx context.Context, chatID int64, loc *Location) error {
	tripID, ok := d.state.TakePendingLocation(chatID)
	if !ok {
		d.notifier.SendMessage(chatID, "No trip awaiting a location.")
		return nil
	}
	if err := d.helper.HandleLocation(ctx, chatID, tripID, loc.Latitude, loc.Longitude); err != nil {
		d.log.Error("Location handling failed", "chat_id", chatID, "trip_id", tripID, "error", err)
		d.notifier.SendMessage(chatID, "Something went wrong, please try again.")
		return fmt.Errorf("location: %w", err)
	}
	return nil
}

func (d *Dispatcher) cmdPlanned(ctx context.Context, chatID int64) error {
	trips, err := d.planner.ListPlanned(ctx, chatID)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		d.notifier.SendMessage(chatID, "No planned trips yet. Create one with /plan.")
		return nil
	}

	lines := make([]string, 0, len(trips))
	for _, t := range trips {
		lines = append(lines, fmt.Sprintf("ID:%d %s (%s - %s)",
			t.ID, t.Name, t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout)))
	}
	d.notifier.SendMessage(chatID, strings.Join(lines, "\n"))
	return nil
}

func (d *Dispatcher) cmdPlan(ctx context.Context, chatID int64, arg string) error {
	name, start, end, points, ok := parsePlanArgs(arg)
	if !ok {
		d.notifier.SendMessage(chatID, "Usage: /plan name|YYYY-MM-DD|YYYY-MM-DD|point@lat,lon;...")
		return nil
	}

	created, err := d.planner.CreateTrip(ctx, chatID, name, start, end, points)
	if err != nil {
		return err
	}
	d.notifier.SendMessage(chatID,
		fmt.Sprintf("Created trip ID:%d with %d waypoints", created.Trip.ID, len(created.Waypoints)))
	return nil
}

func (d *Dispatcher) cmdDelete(ctx context.Context, chatID int64, arg string) error {
	tripID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /delete tripId")
		return nil
	}
	if err := d.planner.DeleteTrip(ctx, tripID); err != nil {
		return d.replyDomain(chatID, err)
	}
	d.notifier.SendMessage(chatID, fmt.Sprintf("Deleted trip ID:%d", tripID))
	return nil
}

func (d *Dispatcher) cmdStart(ctx context.Context, chatID int64, arg string) error {
	tripID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /start tripId")
		return nil
	}
	if err := d.helper.StartTrip(ctx, tripID); err != nil {
		return d.replyDomain(chatID, err)
	}
	// Last /start wins: a second start for the same chat replaces the
	// earlier pending request.
	d.state.SetPendingLocation(chatID, tripID)
	return nil
}

func (d *Dispatcher) cmdMark(ctx context.Context, chatID int64, arg string) error {
	waypointID, err := uuid.Parse(arg)
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /mark waypointId")
		return nil
	}
	wp, err := d.helper.MarkVisited(ctx, waypointID)
	if err != nil {
		return d.replyDomain(chatID, err)
	}
	d.notifier.SendMessage(chatID, fmt.Sprintf("Marked: %s", wp.Name))
	return nil
}

func (d *Dispatcher) cmdNote(ctx context.Context, chatID int64, arg string) error {
	idRaw, note, found := strings.Cut(arg, "|")
	if !found || strings.TrimSpace(note) == "" {
		d.notifier.SendMessage(chatID, "Usage: /note waypointId|text")
		return nil
	}
	waypointID, err := uuid.Parse(strings.TrimSpace(idRaw))
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /note waypointId|text")
		return nil
	}
	wp, err := d.helper.AddNote(ctx, waypointID, strings.TrimSpace(note))
	if err != nil {
		return d.replyDomain(chatID, err)
	}
	d.notifier.SendMessage(chatID, fmt.Sprintf("Note added to %s", wp.Name))
	return nil
}

func (d *Dispatcher) cmdHistory(ctx context.Context, chatID int64) error {
	trips, err := d.history.ListFinished(ctx, chatID)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		d.notifier.SendMessage(chatID, "No finished trips yet.")
		return nil
	}

	lines := make([]string, 0, len(trips))
	for _, t := range trips {
		rating := "n/a"
		if t.Rating != nil {
			rating = strconv.Itoa(*t.Rating)
		}
		lines = append(lines, fmt.Sprintf("ID:%d %s (%s - %s) rated:%s",
			t.ID, t.Name, t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout), rating))
	}
	d.notifier.SendMessage(chatID, strings.Join(lines, "\n"))
	return nil
}

func (d *Dispatcher) cmdDetails(ctx context.Context, chatID int64, arg string) error {
	tripID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /details tripId")
		return nil
	}
	details, err := d.history.TripDetails(ctx, chatID, tripID)
	if err != nil {
		return d.replyDomain(chatID, err)
	}

	lines := []string{fmt.Sprintf("Trip: %s", details.Trip.Name)}
	for _, wp := range details.Waypoints {
		marker := "- "
		if wp.Visited {
			marker = "✅ "
		}
		lines = append(lines, marker+wp.Name)
	}
	d.notifier.SendMessage(chatID, strings.Join(lines, "\n"))
	return nil
}

func (d *Dispatcher) cmdRate(ctx context.Context, chatID int64, arg string) error {
	idRaw, ratingRaw, found := strings.Cut(arg, "|")
	if !found {
		d.notifier.SendMessage(chatID, "Usage: /rate tripId|1-5")
		return nil
	}
	tripID, err := strconv.ParseInt(strings.TrimSpace(idRaw), 10, 64)
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /rate tripId|1-5")
		return nil
	}
	rating, err := strconv.Atoi(strings.TrimSpace(ratingRaw))
	if err != nil {
		d.notifier.SendMessage(chatID, "Usage: /rate tripId|1-5")
		return nil
	}
	if _, err := d.history.Rate(ctx, chatID, tripID, rating); err != nil {
		return d.replyDomain(chatID, err)
	}
	return nil
}

// replyDomain converts a domain validation error into a chat message and
// swallows it. Anything else is passed back up as unexpected.
func (d *Dispatcher) replyDomain(chatID int64, err error) error {
	switch {
	case errors.Is(err, services.ErrTripNotFound):
		d.notifier.SendMessage(chatID, "Trip not found.")
	case errors.Is(err, services.ErrWaypointNotFound):
		d.notifier.SendMessage(chatID, "Waypoint not found.")
	case errors.Is(err, services.ErrAccessDenied):
		d.notifier.SendMessage(chatID, "That trip belongs to someone else.")
	case errors.Is(err, services.ErrTripNotFinished):
		d.notifier.SendMessage(chatID, "That trip is not finished yet.")
	case errors.Is(err, services.ErrInvalidRating):
		d.notifier.SendMessage(chatID, "Rating must be between 1 and 5.")
	default:
		return err
	}
	return nil
}

// parsePlanArgs parses "name|YYYY-MM-DD|YYYY-MM-DD|point@lat,lon;...".
// The waypoint list is optional; everything else is required.
func parsePlanArgs(arg string) (name string, start, end time.Time, points []models.WaypointInput, ok bool) {
	parts := strings.SplitN(arg, "|", 4)
	if len(parts) < 3 {
		return "", time.Time{}, time.Time{}, nil, false
	}

	name = strings.TrimSpace(parts[0])
	if name == "" {
		return "", time.Time{}, time.Time{}, nil, false
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return "", time.Time{}, time.Time{}, nil, false
	}
	end, err = time.Parse(dateLayout, strings.TrimSpace(parts[2]))
	if err != nil {
		return "", time.Time{}, time.Time{}, nil, false
	}

	if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
		for _, raw := range strings.Split(parts[3], ";") {
			pointName, coords, found := strings.Cut(strings.TrimSpace(raw), "@")
			if !found || strings.TrimSpace(pointName) == "" {
				return "", time.Time{}, time.Time{}, nil, false
			}
			latRaw, lonRaw, found := strings.Cut(coords, ",")
			if !found {
				return "", time.Time{}, time.Time{}, nil, false
			}
			lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
			if err != nil {
				return "", time.Time{}, time.Time{}, nil, false
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
			if err != nil {
				return "", time.Time{}, time.Time{}, nil, false
			}
			points = append(points, models.WaypointInput{
				Name: strings.TrimSpace(pointName),
				Lat:  lat,
				Lon:  lon,
			})
		}
	}

	return name, start, end, points, true
}
