// Package config loads benchmark plans: the per-round configuration an
// orchestrator would hand to each worker.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/loadline/paceline/internal/round"
)

// Plan is a fully decoded benchmark plan.
type Plan struct {
	Label   string
	Workers int
	Rounds  []round.Round
}

type planDoc struct {
	Label   string     `yaml:"label" json:"label"`
	Workers int        `yaml:"workers" json:"workers"`
	Rounds  []roundDoc `yaml:"rounds" json:"rounds"`
}

type roundDoc struct {
	Label       string               `yaml:"label" json:"label"`
	TxNumber    int64                `yaml:"txNumber" json:"txNumber,omitempty"`
	Duration    string               `yaml:"duration" json:"duration,omitempty"`
	RateControl round.ControllerSpec `yaml:"rateControl" json:"rateControl"`
}

// Load reads, validates, and decodes the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a YAML plan document.
func Parse(data []byte) (*Plan, error) {
	normalized, err := NormalizeJSON(data)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(normalized); err != nil {
		return nil, err
	}

	var doc planDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}

	plan := &Plan{Label: doc.Label, Workers: doc.Workers}
	for i, rd := range doc.Rounds {
		r := round.Round{
			Label:       rd.Label,
			Index:       i,
			Workers:     doc.Workers,
			TxNumber:    rd.TxNumber,
			RateControl: rd.RateControl,
		}
		if rd.Duration != "" {
			d, err := time.ParseDuration(rd.Duration)
			if err != nil {
				return nil, fmt.Errorf("round %q: invalid duration %q: %w", rd.Label, rd.Duration, err)
			}
			r.Duration = d
		}
		plan.Rounds = append(plan.Rounds, r)
	}
	return plan, nil
}

// NormalizeJSON converts a YAML plan document to its JSON rendering,
// which is what schema validation and summary extraction operate on.
func NormalizeJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	normalized, err := json.Marshal(normalizeKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("normalizing plan: %w", err)
	}
	return normalized, nil
}

// normalizeKeys rewrites the map[interface{}]interface{} values older
// YAML nodes can produce into JSON-marshalable maps.
func normalizeKeys(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[k] = normalizeKeys(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[fmt.Sprint(k)] = normalizeKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, val := range vv {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

func validateSchema(normalized []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("plan.json", strings.NewReader(planSchema)); err != nil {
		return fmt.Errorf("invalid plan schema: %w", err)
	}
	schema, err := compiler.Compile("plan.json")
	if err != nil {
		return fmt.Errorf("invalid plan schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return fmt.Errorf("normalizing plan: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("plan failed schema validation: %w", err)
	}
	return nil
}
