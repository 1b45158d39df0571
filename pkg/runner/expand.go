package runner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corvus-crawler/corvus/pkg/fetch"
	"github.com/corvus-crawler/corvus/pkg/manifest"
	"github.com/corvus-crawler/corvus/pkg/persist"
	"github.com/corvus-crawler/corvus/pkg/template"
)

// Expand turns a manifest into the ordered task list for one run.
//
// Every template string (URL, sink paths, values inside vars and
// params) is date-formatted against the single now instant, then vars
// and params expand per entry: within one entry the value lists of all
// keys cross-multiply (keys iterated in sorted order), across entries
// the results concatenate. The final task set is the cross-product of
// the vars list and the params list, so len(tasks) is always
// len(varsList) * len(paramsList). A key bound by both vars and params
// resolves to the params value.
func Expand(m *manifest.Manifest, now time.Time) ([]Task, error) {
	df := template.NewDateFormatter(now)

	urlTpl := template.Compile(df.Apply(m.Request.URL))
	sinks := m.Methods()
	sinkTpls := make([]*template.Template, len(sinks))
	for i, s := range sinks {
		sinkTpls[i] = template.Compile(df.Apply(s.Target()))
	}

	varsList := expandEntries(m.Request.Vars, df)
	paramsList := expandEntries(m.Request.Params, df)

	method := fetch.MethodGet
	if strings.EqualFold(m.Request.Method, "post") {
		method = fetch.MethodPost
	}
	var enc *fetch.Encoding
	if e := m.Request.Encoding; e != nil {
		enc = &fetch.Encoding{Input: fetch.Charset(e.Input), Output: fetch.Charset(e.Output)}
	}

	tasks := make([]Task, 0, len(varsList)*len(paramsList))
	for _, vars := range varsList {
		for _, params := range paramsList {
			merged := template.Product([]map[string]string{vars}, []map[string]string{params})[0]

			url, err := urlTpl.Render(merged)
			if err != nil {
				return nil, fmt.Errorf("expand url: %w", err)
			}
			rendered := make([]persist.Method, len(sinks))
			for i, s := range sinks {
				target, err := sinkTpls[i].Render(merged)
				if err != nil {
					return nil, fmt.Errorf("expand %s sink: %w", s.Kind, err)
				}
				rendered[i] = s.WithTarget(target)
			}

			req := fetch.Request{
				URL:            url,
				Method:         method,
				Header:         m.Request.Headers,
				Encoding:       enc,
				TimeoutSeconds: m.Request.TimeoutSeconds,
				MaxRetry:       m.Request.MaxRetry,
				SleepSeconds:   m.Request.SleepSeconds,
			}
			if method == fetch.MethodPost {
				req.BodyParams = params
			} else {
				req.QueryParams = params
			}

			tasks = append(tasks, Task{Request: req, Sinks: rendered})
		}
	}
	return tasks, nil
}

// expandEntries expands a vars/params section into its list of concrete
// key-to-value mappings. An absent section contributes the single empty
// mapping so the outer cross-product stays non-empty.
func expandEntries(entries []map[string]manifest.StringList, df template.DateFormatter) []map[string]string {
	if len(entries) == 0 {
		return []map[string]string{{}}
	}

	var out []map[string]string
	for _, entry := range entries {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		combos := []map[string]string{{}}
		for _, k := range keys {
			var alternatives []map[string]string
			for _, value := range entry[k] {
				for _, expanded := range template.ExpandNumericRanges(df.Apply(value)) {
					alternatives = append(alternatives, map[string]string{k: expanded})
				}
			}
			combos = template.Product(combos, alternatives)
		}
		out = append(out, combos...)
	}
	return out
}
