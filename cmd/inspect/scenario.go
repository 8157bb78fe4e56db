package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	handletable "github.com/wippyai/handle-table"
	"github.com/wippyai/handle-table/table"
)

// scenario is a replayable sequence of table operations. Files are JWCC
// (JSON With Commas and Comments), so hand-written scenarios can carry
// notes next to the steps they explain.
type scenario struct {
	Options *scenarioOptions `json:"options"`
	Steps   []scenarioStep   `json:"steps"`
}

type scenarioOptions struct {
	GrowthIncrement uint32 `json:"growth_increment"`
	MinFreeEntries  uint32 `json:"min_free_entries"`
}

// scenarioStep is one operation. Handle fields accept a label recorded
// by an earlier step's "as", or a literal handle in hex or decimal.
type scenarioStep struct {
	Op              string `json:"op"`
	Type            uint8  `json:"type"`
	Object          string `json:"object"`
	Handle          string `json:"handle"`
	MakeValid       *bool  `json:"make_valid"`
	IgnoreDestroyed bool   `json:"ignore_destroyed"`
	Label           string `json:"as"`
}

func loadScenario(path string) (*scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("standardize scenario: %w", err)
	}
	var sc scenario
	if err := json.Unmarshal(std, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

func (sc *scenario) tableOptions(defaults table.Options) table.Options {
	opts := defaults
	if sc.Options != nil {
		opts.GrowthIncrement = sc.Options.GrowthIncrement
		opts.MinFreeEntries = sc.Options.MinFreeEntries
	}
	return opts
}

// replayer runs scenario steps against a table, tracking the handles
// that labeled steps minted.
type replayer struct {
	tbl    *table.Table
	labels map[string]handletable.Handle
	out    io.Writer
}

func newReplayer(tbl *table.Table, out io.Writer) *replayer {
	return &replayer{
		tbl:    tbl,
		labels: make(map[string]handletable.Handle),
		out:    out,
	}
}

func (r *replayer) run(sc *scenario) error {
	for i, step := range sc.Steps {
		line, err := r.step(step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		fmt.Fprintf(r.out, "%3d %s\n", i+1, line)
	}
	return nil
}

// step executes one operation and returns its trace line. Table-level
// failures (stale handles, busy slots) are part of the trace; only a
// malformed step is an error.
func (r *replayer) step(step scenarioStep) (string, error) {
	switch step.Op {
	case "allocate":
		makeValid := true
		if step.MakeValid != nil {
			makeValid = *step.MakeValid
		}
		h, err := r.tbl.AllocateSafe(step.Object, handletable.Type(step.Type), makeValid)
		if err != nil {
			return fmt.Sprintf("allocate type=%d: %v", step.Type, err), nil
		}
		r.label(step.Label, h)
		return fmt.Sprintf("allocate type=%d -> %s%s", step.Type, h, r.labelSuffix(step.Label)), nil

	case "assign":
		h, err := r.handle(step)
		if err != nil {
			return "", err
		}
		if err := r.tbl.AssignSafe(step.Object, handletable.Type(step.Type), h); err != nil {
			return fmt.Sprintf("assign %s type=%d: %v", h, step.Type, err), nil
		}
		r.label(step.Label, h)
		return fmt.Sprintf("assign %s type=%d: ok%s", h, step.Type, r.labelSuffix(step.Label)), nil

	case "free":
		h, err := r.handle(step)
		if err != nil {
			return "", err
		}
		if err := r.tbl.FreeSafe(handletable.Type(step.Type), h); err != nil {
			return fmt.Sprintf("free %s: %v", h, err), nil
		}
		return fmt.Sprintf("free %s: ok", h), nil

	case "mark":
		h, err := r.handle(step)
		if err != nil {
			return "", err
		}
		r.tbl.Lock(table.Exclusive)
		ok := r.tbl.MarkDestroyed(h)
		r.tbl.Unlock(table.Exclusive)
		return fmt.Sprintf("mark %s: %v", h, ok), nil

	case "unmark":
		h, err := r.handle(step)
		if err != nil {
			return "", err
		}
		r.tbl.Lock(table.Exclusive)
		ok := r.tbl.UnmarkDestroyed(h)
		r.tbl.Unlock(table.Exclusive)
		return fmt.Sprintf("unmark %s: %v", h, ok), nil

	case "lookup":
		h, err := r.handle(step)
		if err != nil {
			return "", err
		}
		r.tbl.Lock(table.Shared)
		var obj any
		var ok bool
		if step.IgnoreDestroyed {
			obj, ok = r.tbl.ObjectIgnoreDestroyed(h, handletable.Type(step.Type))
		} else if step.Type == uint8(handletable.TypeAny) {
			obj, ok = r.tbl.Object(h)
		} else {
			obj, ok = r.tbl.ObjectByType(h, handletable.Type(step.Type))
		}
		r.tbl.Unlock(table.Shared)
		if !ok {
			return fmt.Sprintf("lookup %s: miss", h), nil
		}
		return fmt.Sprintf("lookup %s -> %v", h, obj), nil

	case "stats":
		r.tbl.Lock(table.Shared)
		s := r.tbl.Stats()
		r.tbl.Unlock(table.Shared)
		return fmt.Sprintf("stats size=%d used=%d free=%d", s.Size, s.UsedCount, s.FreeCount), nil

	default:
		return "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func (r *replayer) label(label string, h handletable.Handle) {
	if label != "" {
		r.labels[label] = h
	}
}

func (r *replayer) labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " (" + label + ")"
}

// handle resolves a step's handle reference: a label from an earlier
// step, or a literal like 0x40000000.
func (r *replayer) handle(step scenarioStep) (handletable.Handle, error) {
	ref := strings.TrimSpace(step.Handle)
	if ref == "" {
		return 0, fmt.Errorf("missing handle")
	}
	if h, ok := r.labels[ref]; ok {
		return h, nil
	}
	v, err := strconv.ParseUint(ref, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown label or bad handle %q", ref)
	}
	return handletable.Handle(v), nil
}

func replay(path string, defaults table.Options, out io.Writer) error {
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}

	tbl := table.New(sc.tableOptions(defaults))
	r := newReplayer(tbl, out)
	if err := r.run(sc); err != nil {
		return err
	}

	tbl.Lock(table.Shared)
	s := tbl.Stats()
	tbl.Unlock(table.Shared)
	fmt.Fprintf(out, "\nfinal: size=%d used=%d free=%d\n", s.Size, s.UsedCount, s.FreeCount)
	return nil
}
