package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/auth"
	"github.com/iudanet/trendysync/internal/client/sync"
	"github.com/iudanet/trendysync/internal/config"
	"github.com/iudanet/trendysync/internal/models"
)

type cliFixture struct {
	auth     *auth.ServiceMock
	sync     *sync.ServiceMock
	metrics  *sync.Metrics
	cfg      *config.Config
	buildErr error
	built    int
	closed   int
	dataDir  string
}

func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	t.Chdir(t.TempDir())

	return &cliFixture{
		dataDir: t.TempDir(),
		auth: &auth.ServiceMock{
			LoginFunc: func(ctx context.Context, email, password string) (*auth.Status, error) {
				return &auth.Status{Authenticated: true, Email: email}, nil
			},
			RegisterFunc: func(ctx context.Context, email, password string) (*auth.Status, error) {
				return &auth.Status{Authenticated: true, Email: email}, nil
			},
			LogoutFunc: func(ctx context.Context) error { return nil },
			StatusFunc: func(ctx context.Context) (*auth.Status, error) {
				return &auth.Status{}, nil
			},
		},
		sync: &sync.ServiceMock{
			PerformSyncFunc: func(ctx context.Context) *sync.Result {
				return &sync.Result{Outcome: sync.OutcomeSuccess}
			},
			QueueMutationFunc: func(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (bool, error) {
				return true, nil
			},
			ForceBootstrapFunc:      func(ctx context.Context) error { return nil },
			ResetCircuitBreakerFunc: func(ctx context.Context) error { return nil },
			StatusFunc: func(ctx context.Context) (*sync.Status, error) {
				return &sync.Status{Environment: "production", Breaker: models.NewBreakerState()}, nil
			},
		},
	}
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{
		Version: VersionInfo{Version: "1.2.3", BuildDate: "2026-01-01", GitCommit: "abc123"},
		build: func(ctx context.Context, cfg *config.Config) (*App, error) {
			f.cfg = cfg
			if f.buildErr != nil {
				return nil, f.buildErr
			}
			f.built++
			return &App{
				Auth:    f.auth,
				Sync:    f.sync,
				Metrics: f.metrics,
				Config:  cfg,
				Close: func() error {
					f.closed++
					return nil
				},
			}, nil
		},
		readPassword: func(string) (string, error) { return "secret-pass", nil },
	}

	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", f.dataDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(VersionInfo{})

	for _, name := range []string{"login", "register", "logout", "status", "sync", "bootstrap", "breaker", "queue", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "server", "data-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}

	queue, _, err := cmd.Find([]string{"queue"})
	require.NoError(t, err)
	var names []string
	for _, c := range queue.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"event", "event-type", "geofence", "delete"}, names)
}

func TestVersion(t *testing.T) {
	f := setupCLI(t)

	out, err := f.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Zero(t, f.built)
}

func TestLogin(t *testing.T) {
	t.Run("email flag", func(t *testing.T) {
		f := setupCLI(t)

		out, err := f.run(t, "", "login", "--email", "user@example.com")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Logged in as user@example.com")

		calls := f.auth.LoginCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "user@example.com", calls[0].Email)
		assert.Equal(t, "secret-pass", calls[0].Password)
		assert.Equal(t, 1, f.closed)
	})

	t.Run("email prompt", func(t *testing.T) {
		f := setupCLI(t)

		out, err := f.run(t, "  prompt@example.com\n", "login")
		require.NoError(t, err)
		assert.Contains(t, out, "Email: ")
		require.Len(t, f.auth.LoginCalls(), 1)
		assert.Equal(t, "prompt@example.com", f.auth.LoginCalls()[0].Email)
	})

	t.Run("password from env", func(t *testing.T) {
		f := setupCLI(t)
		t.Setenv(PasswordEnv, "env-pass")

		_, err := f.run(t, "", "login", "-e", "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "env-pass", f.auth.LoginCalls()[0].Password)
	})

	t.Run("email required", func(t *testing.T) {
		f := setupCLI(t)

		_, err := f.run(t, "\n", "login")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Empty(t, f.auth.LoginCalls())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := setupCLI(t)
		f.auth.LoginFunc = func(ctx context.Context, email, password string) (*auth.Status, error) {
			return nil, &api.HTTPError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
		}

		_, err := f.run(t, "", "login", "-e", "user@example.com")
		require.Error(t, err)
		assert.Equal(t, ExitAuthRequired, GetExitCode(err))
		assert.Contains(t, err.Error(), "invalid credentials")
	})

	t.Run("server down", func(t *testing.T) {
		f := setupCLI(t)
		f.auth.LoginFunc = func(ctx context.Context, email, password string) (*auth.Status, error) {
			return nil, &api.NetworkError{Op: "login", Err: errors.New("connection refused")}
		}

		_, err := f.run(t, "", "login", "-e", "user@example.com")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestRegister(t *testing.T) {
	f := setupCLI(t)

	out, err := f.run(t, "", "register", "--email", "new@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Registered new@example.com")

	calls := f.auth.RegisterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "new@example.com", calls[0].Email)
	assert.Empty(t, f.auth.LoginCalls())
}

func TestLogout(t *testing.T) {
	f := setupCLI(t)

	out, err := f.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logged out")
	assert.Len(t, f.auth.LogoutCalls(), 1)

	f.auth.LogoutFunc = func(ctx context.Context) error { return errors.New("disk full") }
	_, err = f.run(t, "", "logout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStatus(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		f := setupCLI(t)

		out, err := f.run(t, "", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Status: Not authenticated")
		assert.Contains(t, out, "Environment: production")
		assert.NotContains(t, out, "trendysync sync")
	})

	t.Run("authenticated with pending work", func(t *testing.T) {
		f := setupCLI(t)
		expires := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
		f.auth.StatusFunc = func(ctx context.Context) (*auth.Status, error) {
			return &auth.Status{Authenticated: true, Email: "user@example.com", ExpiresAt: expires}, nil
		}
		f.sync.StatusFunc = func(ctx context.Context) (*sync.Status, error) {
			return &sync.Status{
				Environment:      "staging",
				Cursor:           42,
				PendingMutations: 3,
				ForceBootstrap:   true,
				BackoffRemaining: 90 * time.Second,
				Breaker:          models.BreakerState{ConsecutiveRateLimitErrors: 3, BackoffMultiplier: 2},
				LastResult:       &sync.Result{Outcome: sync.OutcomePartial, FinishedAt: expires},
			}, nil
		}

		out, err := f.run(t, "", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Email: user@example.com")
		assert.Contains(t, out, "Token expires: 2026-10-19T12:00:00Z")
		assert.Contains(t, out, "Cursor:      42")
		assert.Contains(t, out, "Pending:     3 mutation(s)")
		assert.Contains(t, out, "scheduled for next sync")
		assert.Contains(t, out, "multiplier 2.0")
		assert.Contains(t, out, "Backoff active: 1m30s remaining")
		assert.Contains(t, out, "Last sync:   partial")
		assert.Contains(t, out, "Run 'trendysync sync'")
	})

	t.Run("sync state error", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.StatusFunc = func(ctx context.Context) (*sync.Status, error) {
			return nil, errors.New("store locked")
		}

		_, err := f.run(t, "", "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store locked")
	})
}

func TestSync(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.PerformSyncFunc = func(ctx context.Context) *sync.Result {
			return &sync.Result{Outcome: sync.OutcomeSuccess, CursorBefore: 5, CursorAfter: 9, Applied: 4, Pushed: 2}
		}

		out, err := f.run(t, "", "sync")
		require.NoError(t, err)
		assert.Contains(t, out, "=== Sync success ===")
		assert.Contains(t, out, "Cursor:   5 -> 9")
		assert.Contains(t, out, "Applied:  4")
		assert.Contains(t, out, "Pushed:   2")
		assert.NotContains(t, out, "Error:")
		assert.Equal(t, 1, f.closed)
	})

	t.Run("partial", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.PerformSyncFunc = func(ctx context.Context) *sync.Result {
			return &sync.Result{
				Outcome:        sync.OutcomePartial,
				PushErr:        errors.New("push failed"),
				Failed:         1,
				RateLimited:    3,
				BreakerTripped: true,
			}
		}

		out, err := f.run(t, "", "sync")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "partial")
		assert.Contains(t, out, "Error:    push failed")
		assert.Contains(t, out, "Rate limited: 3")
		assert.Contains(t, out, "Circuit breaker tripped")
	})

	t.Run("not logged in", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.PerformSyncFunc = func(ctx context.Context) *sync.Result {
			return &sync.Result{Outcome: sync.OutcomePartial, PullErr: api.ErrNoToken}
		}

		_, err := f.run(t, "", "sync")
		require.Error(t, err)
		assert.Equal(t, ExitAuthRequired, GetExitCode(err))
	})

	t.Run("writes metrics textfile", func(t *testing.T) {
		f := setupCLI(t)
		f.metrics = sync.NewMetrics()
		textfile := filepath.Join(t.TempDir(), "trendysync.prom")
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("metrics:\n  textfile: "+textfile+"\n"), 0o600))

		_, err := f.run(t, "", "--config", cfgPath, "sync")
		require.NoError(t, err)

		b, err := os.ReadFile(textfile)
		require.NoError(t, err)
		assert.Contains(t, string(b), "trendysync_")
	})
}

func TestBootstrap(t *testing.T) {
	f := setupCLI(t)

	_, err := f.run(t, "", "bootstrap")
	require.NoError(t, err)
	assert.Len(t, f.sync.ForceBootstrapCalls(), 1)
	assert.Len(t, f.sync.PerformSyncCalls(), 1)

	f = setupCLI(t)
	f.sync.ForceBootstrapFunc = func(ctx context.Context) error { return errors.New("state db closed") }
	_, err = f.run(t, "", "bootstrap")
	require.Error(t, err)
	assert.Empty(t, f.sync.PerformSyncCalls())
}

func TestBreakerReset(t *testing.T) {
	f := setupCLI(t)

	out, err := f.run(t, "", "breaker", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Circuit breaker reset")
	assert.Len(t, f.sync.ResetCircuitBreakerCalls(), 1)
}

func TestQueue(t *testing.T) {
	t.Run("event type create", func(t *testing.T) {
		f := setupCLI(t)

		out, err := f.run(t, "", "queue", "event-type", "--name", "Workout", "--color", "#FF0000")
		require.NoError(t, err)

		calls := f.sync.QueueMutationCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, models.EntityTypeEventType, calls[0].Kind)
		assert.Equal(t, models.OperationCreate, calls[0].Op)
		assert.Contains(t, out, "✓ Queued create event_type "+calls[0].EntityID)

		var et models.EventType
		require.NoError(t, json.Unmarshal(calls[0].Payload, &et))
		assert.Equal(t, calls[0].EntityID, et.ID)
		assert.Equal(t, "Workout", et.Name)
		assert.Equal(t, "#FF0000", et.Color)
		assert.False(t, et.UpdatedAt.IsZero())
	})

	t.Run("event update", func(t *testing.T) {
		f := setupCLI(t)

		_, err := f.run(t, "", "queue", "event", "--update", "--id", "ev-1", "--type", "et-1",
			"--at", "2026-10-01T08:30:00Z", "--notes", "morning run", "--all-day")
		require.NoError(t, err)

		calls := f.sync.QueueMutationCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "ev-1", calls[0].EntityID)
		assert.Equal(t, models.OperationUpdate, calls[0].Op)

		var ev models.Event
		require.NoError(t, json.Unmarshal(calls[0].Payload, &ev))
		assert.Equal(t, "et-1", ev.EventTypeID)
		assert.Equal(t, time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC), ev.Timestamp.UTC())
		require.NotNil(t, ev.Notes)
		assert.Equal(t, "morning run", *ev.Notes)
		assert.True(t, ev.IsAllDay)
		assert.Equal(t, "manual", ev.SourceType)
	})

	t.Run("geofence", func(t *testing.T) {
		f := setupCLI(t)

		_, err := f.run(t, "", "queue", "geofence", "--name", "Gym", "--lat", "52.5", "--lon", "13.4",
			"--radius", "150", "--entry-type", "et-1")
		require.NoError(t, err)

		calls := f.sync.QueueMutationCalls()
		require.Len(t, calls, 1)
		var gf models.Geofence
		require.NoError(t, json.Unmarshal(calls[0].Payload, &gf))
		assert.InDelta(t, 150.0, gf.Radius, 0.001)
		require.NotNil(t, gf.EventTypeEntryID)
		assert.Equal(t, "et-1", *gf.EventTypeEntryID)
		assert.Nil(t, gf.EventTypeExitID)
		assert.True(t, gf.IsActive)
	})

	t.Run("delete normalizes kind", func(t *testing.T) {
		f := setupCLI(t)

		out, err := f.run(t, "", "queue", "delete", "event-type", "et-1")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Queued delete event_type et-1")

		calls := f.sync.QueueMutationCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, models.EntityTypeEventType, calls[0].Kind)
		assert.Equal(t, models.OperationDelete, calls[0].Op)
		assert.Nil(t, calls[0].Payload)
	})

	t.Run("already queued", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.QueueMutationFunc = func(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (bool, error) {
			return false, nil
		}

		out, err := f.run(t, "", "queue", "delete", "event", "ev-1")
		require.NoError(t, err)
		assert.Contains(t, out, "delete event ev-1 is already queued")
	})

	invalid := []struct {
		name string
		args []string
	}{
		{name: "event type without name", args: []string{"queue", "event-type"}},
		{name: "update without id", args: []string{"queue", "event-type", "--name", "x", "--update"}},
		{name: "event without type", args: []string{"queue", "event"}},
		{name: "event bad time", args: []string{"queue", "event", "--type", "et-1", "--at", "yesterday"}},
		{name: "geofence bad radius", args: []string{"queue", "geofence", "--name", "Gym", "--radius", "0"}},
		{name: "unknown kind", args: []string{"queue", "delete", "note", "n-1"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := setupCLI(t)

			_, err := f.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Empty(t, f.sync.QueueMutationCalls())
		})
	}

	t.Run("queue failure", func(t *testing.T) {
		f := setupCLI(t)
		f.sync.QueueMutationFunc = func(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (bool, error) {
			return false, errors.New("invalid payload")
		}

		_, err := f.run(t, "", "queue", "event-type", "--name", "x")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestConfigErrors(t *testing.T) {
	f := setupCLI(t)

	_, err := f.run(t, "", "--server", "ftp://example.com", "sync")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Zero(t, f.built)

	f.buildErr = errors.New("permission denied")
	_, err = f.run(t, "", "sync")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestFlagsOverrideConfig(t *testing.T) {
	f := setupCLI(t)

	_, err := f.run(t, "", "--server", "https://api.trendy.example", "status")
	require.NoError(t, err)
	require.NotNil(t, f.cfg)
	assert.Equal(t, "https://api.trendy.example", f.cfg.ServerURL)
	assert.Equal(t, f.dataDir, f.cfg.DataDir)
}

func TestBuildApp(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "data")
	cfg.Log.Level = "error"

	app, err := BuildApp(context.Background(), cfg)
	require.NoError(t, err)

	st, err := app.Auth.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Authenticated)

	inserted, err := app.Sync.QueueMutation(context.Background(), models.EntityTypeEventType, "et-1",
		models.OperationCreate, json.RawMessage(`{"id":"et-1","name":"Coffee"}`))
	require.NoError(t, err)
	assert.True(t, inserted)

	syncStatus, err := app.Sync.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, syncStatus.PendingMutations)
	assert.Equal(t, cfg.Environment, syncStatus.Environment)

	require.NoError(t, app.Close())
	assert.FileExists(t, cfg.StatePath())
	assert.FileExists(t, cfg.StorePath())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitAuthRequired, GetExitCode(WrapExitError(ExitAuthRequired, "login", api.ErrNoToken)))
	assert.Equal(t, ExitCommandError, GetExitCode(joinOuter(NewExitError(ExitCommandError, "bad flag"))))

	err := WrapExitError(ExitFailure, "sync", errors.New("inner"))
	assert.Equal(t, "sync: inner", err.Error())
	assert.ErrorContains(t, err.Unwrap(), "inner")
}

func joinOuter(err error) error {
	return errors.Join(errors.New("outer"), err)
}
