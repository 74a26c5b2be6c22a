package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/usecase/extract"
)

type outcomeView struct {
	Key        string         `json:"key"`
	URI        string         `json:"uri"`
	OK         bool           `json:"ok"`
	Stage      domain.Stage   `json:"stage"`
	DurationMS int64          `json:"duration_ms"`
	DocMap     *domain.DocMap `json:"docmap,omitempty"`
	Selected   any            `json:"selected,omitempty"`
	Error      *errorView     `json:"error,omitempty"`
}

type errorView struct {
	Kind     domain.ErrorKind `json:"kind,omitempty"`
	FailedAt domain.Stage     `json:"failed_at,omitempty"`
	Message  string           `json:"message"`
}

type resultView struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Failures  int           `json:"failures"`
	Outcomes  []outcomeView `json:"outcomes"`
}

func toView(res domain.BatchResult) resultView {
	v := resultView{
		RunID:     res.RunID,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
		Failures:  res.Failures(),
		Outcomes:  make([]outcomeView, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		ov := outcomeView{
			Key:        o.Key,
			URI:        o.URI,
			OK:         o.OK(),
			Stage:      o.Stage,
			DurationMS: o.Duration.Milliseconds(),
			DocMap:     o.DocMap,
			Selected:   o.Selected,
		}
		if o.Err != nil {
			ov.Error = &errorView{
				Kind:     domain.KindOf(o.Err),
				FailedAt: domain.StageOf(o.Err),
				Message:  o.Err.Error(),
			}
		}
		v.Outcomes = append(v.Outcomes, ov)
	}
	return v
}

// checkFormat rejects output formats printResult cannot render.
func checkFormat(format string) error {
	switch format {
	case "json", "pretty", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printResult(w io.Writer, res domain.BatchResult, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toView(res))
	case "pretty", "":
		printPrettyResult(w, res, newTheme(w))
	}
	return nil
}

func printPrettyResult(w io.Writer, res domain.BatchResult, th theme) {
	total := res.EndedAt.Sub(res.StartedAt)
	if res.StartedAt.IsZero() || res.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "%s %s\n", th.Title.Render("Run ID:  "), res.RunID)
	fmt.Fprintf(w, "%s %s\n", th.Title.Render("Duration:"), total)
	fmt.Fprintf(w, "%s %d (%d failed)\n", th.Title.Render("Items:   "), len(res.Outcomes), res.Failures())
	fmt.Fprintln(w)

	for _, o := range res.Outcomes {
		mark := th.OK.Render("OK")
		if !o.OK() {
			mark = th.Fail.Render("FAIL")
		}
		fmt.Fprintf(w, "- [%s] %s %s %dms\n", mark, o.Key, th.Faint.Render(o.URI), o.Duration.Milliseconds())

		if o.Err != nil {
			fmt.Fprintf(w, "  error: %s\n", o.Err.Error())
			if kind := domain.KindOf(o.Err); kind != "" {
				fmt.Fprintf(w, "  kind:  %s (after %s)\n", kind, domain.StageOf(o.Err))
			}
		}
		if o.DocMap != nil {
			dm := o.DocMap
			fmt.Fprintf(w, "  docmap:    %s\n", dm.ID)
			fmt.Fprintf(w, "  publisher: %s\n", dm.Publisher.Name)
			fmt.Fprintf(w, "  steps:     %d\n", len(dm.Steps))
		}
		if o.Selected != nil {
			s, err := extract.String(o.Selected)
			if err != nil {
				s = fmt.Sprint(o.Selected)
			}
			fmt.Fprintf(w, "  selected:  %s\n", s)
		}
		fmt.Fprintln(w)
	}
}
