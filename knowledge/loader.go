package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/embedding"
)

// ErrLoad is returned when no usable knowledge base can be built. It is
// only ever fatal at startup.
var ErrLoad = errors.New("knowledge base load failed")

// ArtifactVersion is written by build-index and accepted by the loader.
const ArtifactVersion = 1

// skipped categories of the raw dataset
var rawReservedKeys = map[string]bool{"metadata": true, "lessons": true}

var alternativeFields = []string{"alternative_solution", "alternative_method", "method_2"}

// LoadOptions controls how a dataset is turned into a Base.
type LoadOptions struct {
	// Encoder is used for entries without a vector when EmbedMissing is set.
	Encoder      embedding.Encoder
	EmbedMissing bool
	Concurrency  int
	// Threshold overrides the stored or learned similarity threshold.
	Threshold float64
}

// LoadFile reads path and builds a Base from it.
func LoadFile(ctx context.Context, path string, opt LoadOptions) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	b, err := Parse(ctx, data, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Infof("knowledge: loaded %d entries from %s (threshold %.3f, %d patterns)",
		b.Len(), path, b.Threshold(), b.PatternCount())
	return b, nil
}

// Parse accepts either a build-index artifact (an object with "entries") or
// the raw dataset keyed by category. Malformed entries are skipped with a
// warning; the call fails only when nothing usable remains.
func Parse(ctx context.Context, data []byte, opt LoadOptions) (*Base, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrLoad)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrLoad)
	}

	var (
		entries  []Entry
		warnings *multierror.Error
		stored   float64
		encoder  string
	)
	if arr := root.Get("entries"); arr.IsArray() {
		entries, warnings = parseArtifact(arr)
		stored = root.Get("similarity_threshold").Float()
		encoder = root.Get("encoder.provider").String()
	} else {
		entries, warnings = parseRaw(root)
	}

	if opt.Encoder != nil && encoder != "" && encoder != opt.Encoder.Name() {
		logger.Warnf("knowledge: embeddings were built with %s but queries use %s", encoder, opt.Encoder.Name())
	}

	if opt.EmbedMissing && opt.Encoder != nil {
		if err := Embed(ctx, opt.Encoder, entries, opt.Concurrency); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		if encoder == "" {
			encoder = opt.Encoder.Name()
		}
	}

	entries, dropped := keepEmbedded(entries)
	warnings = multierror.Append(warnings, dropped...)
	if warnings != nil {
		for _, w := range warnings.Errors {
			logger.Warnf("knowledge: skipped entry: %v", w)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no usable entries (%d skipped)", ErrLoad, warnings.Len())
	}
	if opt.Encoder != nil && opt.Encoder.Dimensions() > 0 && len(entries[0].Embedding) != opt.Encoder.Dimensions() {
		return nil, fmt.Errorf("%w: embeddings have %d dims but encoder %s produces %d",
			ErrLoad, len(entries[0].Embedding), opt.Encoder.Name(), opt.Encoder.Dimensions())
	}

	threshold := stored
	if opt.Threshold > 0 {
		threshold = opt.Threshold
	}
	b := New(entries, threshold)
	b.encoder = encoder
	return b, nil
}

func parseArtifact(arr gjson.Result) ([]Entry, *multierror.Error) {
	var (
		entries  []Entry
		warnings *multierror.Error
	)
	arr.ForEach(func(key, item gjson.Result) bool {
		var e Entry
		if err := json.Unmarshal([]byte(item.Raw), &e); err != nil {
			warnings = multierror.Append(warnings, fmt.Errorf("entry %d: %w", key.Int(), err))
			return true
		}
		if strings.TrimSpace(e.Question) == "" {
			warnings = multierror.Append(warnings, fmt.Errorf("entry %d: missing question", key.Int()))
			return true
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("entry_%d", key.Int()+1)
		}
		if len(e.SolutionSteps) == 0 {
			e.SolutionSteps = []string{"Solution not available"}
		}
		entries = append(entries, e)
		return true
	})
	return entries, warnings
}

func parseRaw(root gjson.Result) ([]Entry, *multierror.Error) {
	var (
		entries  []Entry
		warnings *multierror.Error
	)
	root.ForEach(func(key, items gjson.Result) bool {
		category := key.String()
		if rawReservedKeys[category] || !items.IsArray() {
			return true
		}
		i := 0
		items.ForEach(func(_, item gjson.Result) bool {
			i++
			e, err := parseRawItem(category, i, item)
			if err != nil {
				warnings = multierror.Append(warnings, fmt.Errorf("%s[%d]: %w", category, i-1, err))
				return true
			}
			entries = append(entries, e)
			return true
		})
		return true
	})
	return entries, warnings
}

func parseRawItem(category string, n int, item gjson.Result) (Entry, error) {
	if !item.IsObject() {
		return Entry{}, errors.New("not an object")
	}
	question := strings.TrimSpace(item.Get("question").String())
	if question == "" {
		return Entry{}, errors.New("missing question")
	}
	e := Entry{
		ID:          item.Get("id").String(),
		Question:    question,
		Category:    category,
		FinalAnswer: strings.TrimSpace(item.Get("final_answer").String()),
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s_%d", category, n)
	}

	switch {
	case item.Get("step_by_step_solution").Exists():
		e.SolutionSteps = stringList(item.Get("step_by_step_solution"))
	case item.Get("solution").Exists():
		e.SolutionSteps = stringList(item.Get("solution"))
	}
	if len(e.SolutionSteps) == 0 {
		e.SolutionSteps = []string{"Solution not available"}
	}
	for _, field := range alternativeFields {
		if v := item.Get(field); v.Exists() {
			e.AlternativeSteps = stringList(v)
			break
		}
	}

	if item.Get("matplotlib_code").Exists() {
		logger.Debugf("knowledge: %s carries matplotlib_code, which is not executed", e.ID)
	}
	if pi := item.Get("plotting_instructions"); pi.IsObject() {
		e.Plotting = parsePlotting(pi)
	}
	if mentionsGraph(question) {
		if e.Plotting == nil {
			e.Plotting = &PlottingSpec{}
		}
		if len(e.Plotting.Equations) == 0 {
			e.Plotting.NeedsGraph = true
		}
	}

	if v := item.Get("embedding"); v.IsArray() {
		v.ForEach(func(_, x gjson.Result) bool {
			e.Embedding = append(e.Embedding, float32(x.Float()))
			return true
		})
	}
	if v := item.Get("tags"); v.IsArray() {
		e.Tags = stringList(v)
	}
	return e, nil
}

func parsePlotting(pi gjson.Result) *PlottingSpec {
	p := &PlottingSpec{
		Equations: stringList(pi.Get("equations")),
		XScale:    pi.Get("x_scale").String(),
		XLabel:    pi.Get("axes_config.x_label").String(),
		YLabel:    pi.Get("axes_config.y_label").String(),
	}
	if d := pi.Get("domain").Array(); len(d) == 2 {
		p.Domain = []float64{d[0].Float(), d[1].Float()}
	}
	return p
}

// stringList reads a string or an array of strings; empty items are dropped.
func stringList(v gjson.Result) []string {
	if v.Type == gjson.String {
		if s := strings.TrimSpace(v.String()); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, x := range v.Array() {
		if s := strings.TrimSpace(x.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// keepEmbedded drops entries without a vector or whose vector length
// differs from the first one.
func keepEmbedded(entries []Entry) ([]Entry, []error) {
	var (
		kept []Entry
		errs []error
		dims int
	)
	for _, e := range entries {
		switch {
		case len(e.Embedding) == 0:
			errs = append(errs, fmt.Errorf("%s: no embedding", e.ID))
		case dims != 0 && len(e.Embedding) != dims:
			errs = append(errs, fmt.Errorf("%s: embedding has %d dims, want %d", e.ID, len(e.Embedding), dims))
		default:
			dims = len(e.Embedding)
			kept = append(kept, e)
		}
	}
	return kept, errs
}
