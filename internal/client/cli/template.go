package cli

import (
	"io"
	"text/template"
	"time"

	"github.com/iudanet/trendysync/internal/client/sync"
)

const syncResultTemplate = `
=== Sync {{.Outcome}} ===

Duration: {{duration .}}
Cursor:   {{.CursorBefore}} -> {{.CursorAfter}}
{{- if .Bootstrapped }}
Bootstrap: done
{{- end}}
Applied:  {{.Applied}}
{{- if .Skipped }}
Skipped:  {{.Skipped}}
{{- end}}
Pushed:   {{.Pushed}}
{{- if .Failed }}
Failed:   {{.Failed}}
{{- end}}
{{- if .RateLimited }}
Rate limited: {{.RateLimited}}
{{- end}}
Pending:  {{.PendingAfter}}
{{- if .BreakerTripped }}
⚠️  Circuit breaker tripped, sync is paused
{{- end}}
{{- range phaseErrors . }}
Error:    {{.}}
{{- end}}
`

const syncStatusTemplate = `
=== Sync Status ===

Environment: {{.Environment}}
Cursor:      {{.Cursor}}
Pending:     {{.PendingMutations}} mutation(s)
{{- if .ForceBootstrap }}
Bootstrap:   scheduled for next sync
{{- end}}
{{- if .Syncing }}
Syncing:     in progress
{{- end}}
Breaker:     {{.Breaker.ConsecutiveRateLimitErrors}} rate limit error(s), multiplier {{printf "%.1f" .Breaker.BackoffMultiplier}}
{{- if .BackoffRemaining }}
⚠️  Backoff active: {{round .BackoffRemaining}} remaining
{{- end}}
{{- with .LastResult }}
Last sync:   {{.Outcome}} at {{.FinishedAt.Format "2006-01-02T15:04:05Z07:00"}}
{{- end}}
`

var templates = template.Must(template.New("cli").Funcs(template.FuncMap{
	"duration": func(r *sync.Result) time.Duration { return r.Duration().Round(time.Millisecond) },
	"round":    func(d time.Duration) time.Duration { return d.Round(time.Second) },
	"phaseErrors": func(r *sync.Result) []error {
		var errs []error
		for _, err := range []error{r.HealthErr, r.StoreErr, r.BootstrapErr, r.PullErr, r.PushErr} {
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errs
	},
}).Parse(`{{define "result"}}` + syncResultTemplate + `{{end}}{{define "status"}}` + syncStatusTemplate + `{{end}}`))

func printResult(w io.Writer, res *sync.Result) error {
	return templates.ExecuteTemplate(w, "result", res)
}

func printSyncStatus(w io.Writer, st *sync.Status) error {
	return templates.ExecuteTemplate(w, "status", st)
}
