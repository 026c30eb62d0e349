// Package script loads batch experiment definitions from Lua files.
//
// A script returns a list of experiment tables:
//
//	return {
//	    {
//	        name = "species-by-bill",
//	        label = "species",
//	        features = {"bill_length_mm", "bill_depth_mm"},
//	        proportions = {0.7, 0.3},
//	        seed = 42,
//	        model = "linear",
//	    },
//	}
//
// Recognized models: "linear" (one-vs-rest), "binary:probability" and
// "binary:linear" (two-class thresholding with an explicit score
// scale), "centroid", and "constant:<label>".
package script

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/experiment"
	"github.com/louisbranch/rookery/internal/model"
	"github.com/louisbranch/rookery/internal/model/centroid"
	"github.com/louisbranch/rookery/internal/model/linear"
)

// LoadFile loads experiment definitions from a Lua script at path.
func LoadFile(path string) ([]experiment.Definition, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runScript(state)
}

// LoadString loads experiment definitions from Lua source.
func LoadString(source string) ([]experiment.Definition, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runScript(state)
}

func runScript(state *lua.State) ([]experiment.Definition, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeTable {
		state.Pop(1)
		return nil, fmt.Errorf("script must return a list of experiment tables")
	}

	count := state.RawLength(-1)
	if count == 0 {
		state.Pop(1)
		return nil, fmt.Errorf("script returned no experiments")
	}

	defs := make([]experiment.Definition, 0, count)
	for i := 1; i <= count; i++ {
		state.RawGetInt(-1, i)
		def, err := parseDefinition(state)
		state.Pop(1)
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	state.Pop(1)

	return defs, nil
}

// parseDefinition reads the experiment table at the top of the stack.
func parseDefinition(state *lua.State) (experiment.Definition, error) {
	if state.TypeOf(-1) != lua.TypeTable {
		return experiment.Definition{}, fmt.Errorf("entry is not a table")
	}

	name, err := stringField(state, "name")
	if err != nil {
		return experiment.Definition{}, err
	}

	labelName, err := stringField(state, "label")
	if err != nil {
		return experiment.Definition{}, err
	}
	label, err := dataset.ParseField(labelName)
	if err != nil {
		return experiment.Definition{}, err
	}

	featureNames, err := stringListField(state, "features")
	if err != nil {
		return experiment.Definition{}, err
	}
	features := make([]dataset.Field, 0, len(featureNames))
	for _, featureName := range featureNames {
		feature, err := dataset.ParseField(featureName)
		if err != nil {
			return experiment.Definition{}, err
		}
		features = append(features, feature)
	}

	proportions, err := numberListField(state, "proportions")
	if err != nil {
		return experiment.Definition{}, err
	}

	seed, err := integerField(state, "seed")
	if err != nil {
		return experiment.Definition{}, err
	}

	modelName, err := stringField(state, "model")
	if err != nil {
		return experiment.Definition{}, err
	}
	fitter, err := NewFitter(modelName, label, features)
	if err != nil {
		return experiment.Definition{}, err
	}

	return experiment.Definition{
		Name:        name,
		Label:       label,
		Features:    features,
		Proportions: proportions,
		Seed:        seed,
		Fitter:      fitter,
	}, nil
}

// NewFitter maps a model name to a fitter for the given label and
// features.
func NewFitter(name string, label dataset.Field, features []dataset.Field) (model.Fitter, error) {
	switch {
	case name == "linear":
		return linear.NewOneVsRest(label, features)
	case strings.HasPrefix(name, "binary:"):
		scale, err := model.ParseScoreScale(strings.TrimPrefix(name, "binary:"))
		if err != nil {
			return nil, err
		}
		return linear.NewBinary(label, features, scale)
	case name == "centroid":
		return centroid.New(label, features)
	case strings.HasPrefix(name, "constant:"):
		constantLabel := strings.TrimPrefix(name, "constant:")
		if constantLabel == "" {
			return nil, fmt.Errorf("constant model requires a label, e.g. constant:Adelie")
		}
		return model.Constant{Label: constantLabel}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}

func stringField(state *lua.State, name string) (string, error) {
	state.Field(-1, name)
	defer state.Pop(1)

	if state.TypeOf(-1) != lua.TypeString {
		return "", fmt.Errorf("field %q must be a string", name)
	}
	value, ok := state.ToString(-1)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("field %q must be a non-empty string", name)
	}
	return value, nil
}

func integerField(state *lua.State, name string) (int64, error) {
	state.Field(-1, name)
	defer state.Pop(1)

	if state.TypeOf(-1) != lua.TypeNumber {
		return 0, fmt.Errorf("field %q must be a number", name)
	}
	value, ok := state.ToNumber(-1)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", name)
	}
	return int64(value), nil
}

func stringListField(state *lua.State, name string) ([]string, error) {
	state.Field(-1, name)
	defer state.Pop(1)

	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("field %q must be a list of strings", name)
	}

	count := state.RawLength(-1)
	values := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		state.RawGetInt(-1, i)
		value, ok := state.ToString(-1)
		state.Pop(1)
		if !ok {
			return nil, fmt.Errorf("field %q entry %d must be a string", name, i)
		}
		values = append(values, value)
	}
	return values, nil
}

func numberListField(state *lua.State, name string) ([]float64, error) {
	state.Field(-1, name)
	defer state.Pop(1)

	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("field %q must be a list of numbers", name)
	}

	count := state.RawLength(-1)
	values := make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		state.RawGetInt(-1, i)
		value, ok := state.ToNumber(-1)
		state.Pop(1)
		if !ok {
			return nil, fmt.Errorf("field %q entry %d must be a number", name, i)
		}
		values = append(values, value)
	}
	return values, nil
}
