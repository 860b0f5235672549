package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/pkg/api"
)

// EventsPageSize размер страницы при полной выгрузке событий
const EventsPageSize = 500

// itemPaths базовые пути для операций над одной сущностью
var itemPaths = map[models.EntityType]string{
	models.EntityTypeEventType:          "/api/v1/event-types",
	models.EntityTypeEvent:              "/api/v1/events",
	models.EntityTypeGeofence:           "/api/v1/geofences",
	models.EntityTypePropertyDefinition: "/api/v1/property-definitions",
}

func itemPath(kind models.EntityType, id string) (string, error) {
	base, ok := itemPaths[kind]
	if !ok {
		return "", fmt.Errorf("unsupported entity type %q", kind)
	}
	return base + "/" + url.PathEscape(id), nil
}

// HealthProbe checks that the backend answers with decodable JSON.
// A captive portal returning HTML yields a *DecodingError.
func (c *Client) HealthProbe(ctx context.Context) error {
	var types []models.EventType
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/event-types",
		op:     "health probe",
		result: &types,
	})
}

// GetAllEventTypes returns all event types of the user
func (c *Client) GetAllEventTypes(ctx context.Context) ([]models.EventType, error) {
	var types []models.EventType
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/event-types",
		op:     "get event types",
		result: &types,
	})
	if err != nil {
		return nil, fmt.Errorf("get event types request failed: %w", err)
	}
	return types, nil
}

// GetAllGeofences returns all geofences of the user
func (c *Client) GetAllGeofences(ctx context.Context) ([]models.Geofence, error) {
	var geofences []models.Geofence
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/geofences",
		op:     "get geofences",
		result: &geofences,
	})
	if err != nil {
		return nil, fmt.Errorf("get geofences request failed: %w", err)
	}
	return geofences, nil
}

// GetAllEvents pages through /events with limit/offset until a short page
func (c *Client) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	var all []models.Event
	for offset := 0; ; offset += EventsPageSize {
		var page []models.Event
		err := c.do(ctx, request{
			method: http.MethodGet,
			path:   fmt.Sprintf("/api/v1/events?limit=%d&offset=%d", EventsPageSize, offset),
			op:     "get events",
			result: &page,
		})
		if err != nil {
			return nil, fmt.Errorf("get events request failed (offset %d): %w", offset, err)
		}

		all = append(all, page...)
		if len(page) < EventsPageSize {
			return all, nil
		}
	}
}

// GetPropertyDefinitions returns property definitions of one event type
func (c *Client) GetPropertyDefinitions(ctx context.Context, eventTypeID string) ([]models.PropertyDefinition, error) {
	var defs []models.PropertyDefinition
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/event-types/" + url.PathEscape(eventTypeID) + "/properties",
		op:     "get property definitions",
		result: &defs,
	})
	if err != nil {
		return nil, fmt.Errorf("get property definitions request failed: %w", err)
	}
	return defs, nil
}

// entityRef is the part of a written entity the client checks: the server
// must answer a create or update with the stored entity.
type entityRef struct {
	ID string `json:"id"`
}

func (r entityRef) validate(op string) error {
	if r.ID == "" {
		return &DecodingError{Op: op, Err: errors.New("response has no entity id")}
	}
	return nil
}

// CreateEntity posts a create payload. Property definitions are created
// under their event type.
func (c *Client) CreateEntity(ctx context.Context, kind models.EntityType, payload json.RawMessage, idempotencyKey string) error {
	path, ok := itemPaths[kind]
	if !ok {
		return fmt.Errorf("unsupported entity type %q", kind)
	}

	if kind == models.EntityTypePropertyDefinition {
		var ref struct {
			EventTypeID string `json:"event_type_id"`
		}
		if err := json.Unmarshal(payload, &ref); err != nil || ref.EventTypeID == "" {
			return fmt.Errorf("property definition payload has no event_type_id")
		}
		path = "/api/v1/event-types/" + url.PathEscape(ref.EventTypeID) + "/properties"
	}

	op := "create " + string(kind)
	var created entityRef
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           path,
		op:             op,
		body:           payload,
		result:         &created,
		idempotencyKey: idempotencyKey,
	})
	if err != nil {
		return err
	}
	return created.validate(op)
}

// UpdateEntity sends a full update payload for the entity
func (c *Client) UpdateEntity(ctx context.Context, kind models.EntityType, id string, payload json.RawMessage, idempotencyKey string) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}
	op := "update " + string(kind)
	var updated entityRef
	err = c.do(ctx, request{
		method:         http.MethodPut,
		path:           path,
		op:             op,
		body:           payload,
		result:         &updated,
		idempotencyKey: idempotencyKey,
	})
	if err != nil {
		return err
	}
	return updated.validate(op)
}

// DeleteEntity deletes the entity on the server. The response must be empty
// or JSON; anything else is a *DecodingError.
func (c *Client) DeleteEntity(ctx context.Context, kind models.EntityType, id string, idempotencyKey string) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:         http.MethodDelete,
		path:           path,
		op:             "delete " + string(kind),
		idempotencyKey: idempotencyKey,
	})
}

// CreateEventsBatch posts event create payloads in one request.
// A batch in which every item failed comes back as HTTP 400 with the
// regular batch body; it is returned as a response, not an error.
func (c *Client) CreateEventsBatch(ctx context.Context, payloads []json.RawMessage, idempotencyKey string) (*api.BatchCreateEventsResponse, error) {
	var resp api.BatchCreateEventsResponse
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "/api/v1/events/batch",
		op:             "create events batch",
		body:           api.BatchCreateEventsRequest{Events: payloads},
		result:         &resp,
		idempotencyKey: idempotencyKey,
	})
	if err == nil {
		return &resp, nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
		var failed api.BatchCreateEventsResponse
		if json.Unmarshal(httpErr.body, &failed) == nil && failed.Total > 0 {
			return &failed, nil
		}
	}

	return nil, err
}
