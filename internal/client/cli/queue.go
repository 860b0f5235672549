package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/trendysync/internal/models"
)

// mutationTarget общие флаги команд queue: новый id или update существующего
type mutationTarget struct {
	id     string
	update bool
}

func (m *mutationTarget) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.id, "id", "", "entity id (default: new UUIDv7)")
	cmd.Flags().BoolVar(&m.update, "update", false, "queue an update of --id instead of a create")
}

func (m *mutationTarget) resolve() (string, models.Operation, error) {
	if m.update {
		if m.id == "" {
			return "", "", NewExitError(ExitCommandError, "--update requires --id")
		}
		return m.id, models.OperationUpdate, nil
	}
	if m.id != "" {
		return m.id, models.OperationCreate, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), models.OperationCreate, nil
}

func newQueueCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue local changes for the next sync",
	}
	cmd.AddCommand(newQueueEventTypeCommand(opts))
	cmd.AddCommand(newQueueEventCommand(opts))
	cmd.AddCommand(newQueueGeofenceCommand(opts))
	cmd.AddCommand(newQueueDeleteCommand(opts))
	return cmd
}

func newQueueEventTypeCommand(opts *RootOptions) *cobra.Command {
	var (
		target mutationTarget
		et     models.EventType
	)
	cmd := &cobra.Command{
		Use:   "event-type",
		Short: "Queue an event type create or update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(et.Name) == "" {
				return NewExitError(ExitCommandError, "--name is required")
			}
			return opts.queue(cmd, models.EntityTypeEventType, &target, func(id string, now time.Time) any {
				et.ID = id
				et.CreatedAt, et.UpdatedAt = now, now
				return &et
			})
		},
	}
	target.bind(cmd)
	cmd.Flags().StringVar(&et.Name, "name", "", "event type name")
	cmd.Flags().StringVar(&et.Color, "color", "#3B82F6", "display color")
	cmd.Flags().StringVar(&et.Icon, "icon", "circle", "display icon")
	return cmd
}

func newQueueEventCommand(opts *RootOptions) *cobra.Command {
	var (
		target mutationTarget
		ev     models.Event
		at     string
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Queue an event create or update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ev.EventTypeID == "" {
				return NewExitError(ExitCommandError, "--type is required")
			}
			var ts time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --at, want RFC3339", err)
				}
				ts = parsed
			}
			if notes != "" {
				ev.Notes = &notes
			}
			return opts.queue(cmd, models.EntityTypeEvent, &target, func(id string, now time.Time) any {
				ev.ID = id
				ev.Timestamp = ts
				if ev.Timestamp.IsZero() {
					ev.Timestamp = now
				}
				ev.CreatedAt, ev.UpdatedAt = now, now
				return &ev
			})
		},
	}
	target.bind(cmd)
	cmd.Flags().StringVar(&ev.EventTypeID, "type", "", "event type id")
	cmd.Flags().StringVar(&at, "at", "", "event time in RFC3339 (default: now)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&ev.SourceType, "source", "manual", "event source")
	cmd.Flags().BoolVar(&ev.IsAllDay, "all-day", false, "all-day event")
	return cmd
}

func newQueueGeofenceCommand(opts *RootOptions) *cobra.Command {
	var (
		target    mutationTarget
		gf        models.Geofence
		entryType string
		exitType  string
	)
	cmd := &cobra.Command{
		Use:   "geofence",
		Short: "Queue a geofence create or update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(gf.Name) == "" {
				return NewExitError(ExitCommandError, "--name is required")
			}
			if gf.Radius <= 0 {
				return NewExitError(ExitCommandError, "--radius must be positive")
			}
			if entryType != "" {
				gf.EventTypeEntryID = &entryType
			}
			if exitType != "" {
				gf.EventTypeExitID = &exitType
			}
			return opts.queue(cmd, models.EntityTypeGeofence, &target, func(id string, now time.Time) any {
				gf.ID = id
				gf.CreatedAt, gf.UpdatedAt = now, now
				return &gf
			})
		},
	}
	target.bind(cmd)
	cmd.Flags().StringVar(&gf.Name, "name", "", "geofence name")
	cmd.Flags().Float64Var(&gf.Latitude, "lat", 0, "center latitude")
	cmd.Flags().Float64Var(&gf.Longitude, "lon", 0, "center longitude")
	cmd.Flags().Float64Var(&gf.Radius, "radius", 100, "radius in meters")
	cmd.Flags().StringVar(&entryType, "entry-type", "", "event type id logged on entry")
	cmd.Flags().StringVar(&exitType, "exit-type", "", "event type id logged on exit")
	cmd.Flags().BoolVar(&gf.IsActive, "active", true, "geofence is monitored")
	cmd.Flags().BoolVar(&gf.NotifyOnEntry, "notify-entry", false, "notify on entry")
	cmd.Flags().BoolVar(&gf.NotifyOnExit, "notify-exit", false, "notify on exit")
	return cmd
}

func newQueueDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Queue a delete (KIND: event, event_type, geofence, property_definition)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := models.EntityType(strings.ReplaceAll(args[0], "-", "_"))
			if !kind.Valid() {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown entity kind %q", args[0]))
			}
			id := args[1]
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				inserted, err := app.Sync.QueueMutation(ctx, kind, id, models.OperationDelete, nil)
				if err != nil {
					return fmt.Errorf("failed to queue delete: %w", err)
				}
				reportQueued(cmd, kind, id, models.OperationDelete, inserted)
				return nil
			})
		},
	}
}

// queue сериализует сущность и ставит мутацию в очередь движка
func (o *RootOptions) queue(cmd *cobra.Command, kind models.EntityType, target *mutationTarget, build func(id string, now time.Time) any) error {
	id, op, err := target.resolve()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(build(id, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return o.run(cmd, func(ctx context.Context, app *App) error {
		inserted, err := app.Sync.QueueMutation(ctx, kind, id, op, payload)
		if err != nil {
			return fmt.Errorf("failed to queue %s: %w", kind, err)
		}
		reportQueued(cmd, kind, id, op, inserted)
		return nil
	})
}

func reportQueued(cmd *cobra.Command, kind models.EntityType, id string, op models.Operation, inserted bool) {
	out := cmd.OutOrStdout()
	if !inserted {
		fmt.Fprintf(out, "%s %s %s is already queued\n", op, kind, id)
		return
	}
	fmt.Fprintf(out, "✓ Queued %s %s %s\n", op, kind, id)
}
