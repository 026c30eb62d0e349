// Package mcp exposes the dataset splitter, evaluation harness, and
// experiment driver to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/rookery/internal/core/evaluate"
	"github.com/louisbranch/rookery/internal/core/split"
	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/experiment"
	"github.com/louisbranch/rookery/internal/experiment/script"
	"github.com/louisbranch/rookery/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Rookery"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// runsResourceURI lists recently persisted runs.
	runsResourceURI = "runs://list"
	// runsListLimit caps the runs resource payload.
	runsListLimit = 50
)

// DataSource supplies the dataset used by experiment tools.
type DataSource func() (dataset.Dataset, error)

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	service   *experiment.Service
	source    DataSource
	store     storage.RunStore
}

// New creates a configured MCP server. The store may be nil; the runs
// resource then reports that persistence is disabled.
func New(service *experiment.Service, source DataSource, store storage.RunStore) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("experiment service is required")
	}
	if source == nil {
		return nil, fmt.Errorf("data source is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	server := &Server{mcpServer: mcpServer, service: service, source: source, store: store}

	mcp.AddTool(mcpServer, splitTool(), server.splitHandler)
	mcp.AddTool(mcpServer, evaluateTool(), server.evaluateHandler)
	mcp.AddTool(mcpServer, experimentRunTool(), server.experimentRunHandler)
	mcpServer.AddResource(&mcp.Resource{
		URI:         runsResourceURI,
		Name:        "runs",
		Description: "Recently persisted experiment runs",
		MIMEType:    "application/json",
	}, server.runsResourceHandler)

	return server, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or
// the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// SplitInput represents the MCP tool input for a dataset split.
type SplitInput struct {
	Size        int       `json:"size" jsonschema:"number of records to partition"`
	Proportions []float64 `json:"proportions" jsonschema:"partition proportions, each in (0, 1], summing to at most 1.0"`
	Seed        int64     `json:"seed" jsonschema:"random seed; the same seed always yields the same partitions"`
}

// SplitResult represents the MCP tool output for a dataset split.
type SplitResult struct {
	PartitionSizes []int   `json:"partition_sizes" jsonschema:"record count per partition"`
	Partitions     [][]int `json:"partitions" jsonschema:"record index assignments per partition"`
}

func splitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dataset_split",
		Description: "Deterministically partitions record indices into disjoint subsets by seeded random sampling.",
	}
}

func (s *Server) splitHandler(ctx context.Context, _ *mcp.CallToolRequest, input SplitInput) (*mcp.CallToolResult, SplitResult, error) {
	result, err := split.Split(split.Request{
		Size:        input.Size,
		Proportions: input.Proportions,
		Seed:        input.Seed,
	})
	if err != nil {
		return nil, SplitResult{}, fmt.Errorf("dataset split failed: %w", err)
	}

	sizes := make([]int, len(result.Partitions))
	for i, partition := range result.Partitions {
		sizes[i] = len(partition)
	}
	return nil, SplitResult{PartitionSizes: sizes, Partitions: result.Partitions}, nil
}

// EvaluateInput represents the MCP tool input for scoring predictions.
type EvaluateInput struct {
	Predicted []string `json:"predicted" jsonschema:"predicted labels, positionally aligned with observed"`
	Observed  []string `json:"observed" jsonschema:"observed labels"`
}

// EvaluateResult represents the MCP tool output for scoring predictions.
type EvaluateResult struct {
	Total       int         `json:"total" jsonschema:"number of scored positions"`
	Correct     int         `json:"correct" jsonschema:"number of positional matches"`
	Accuracy    float64     `json:"accuracy" jsonschema:"fraction of positional matches"`
	Labels      []string    `json:"labels" jsonschema:"label union in ascending order; rows are observed, columns predicted"`
	Counts      [][]int     `json:"counts" jsonschema:"confusion matrix counts"`
	Proportions [][]float64 `json:"proportions" jsonschema:"row-normalized confusion matrix"`
}

func evaluateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "classifier_evaluate",
		Description: "Scores predicted labels against observed labels: accuracy plus a confusion matrix.",
	}
}

func (s *Server) evaluateHandler(ctx context.Context, _ *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, EvaluateResult, error) {
	result, err := evaluate.Evaluate(input.Predicted, input.Observed)
	if err != nil {
		return nil, EvaluateResult{}, fmt.Errorf("evaluation failed: %w", err)
	}
	return nil, EvaluateResult{
		Total:       result.Total,
		Correct:     result.Correct,
		Accuracy:    result.Accuracy,
		Labels:      result.Labels,
		Counts:      result.Counts,
		Proportions: result.Proportions,
	}, nil
}

// ExperimentRunInput represents the MCP tool input for an experiment
// run against the server's configured dataset.
type ExperimentRunInput struct {
	Name        string    `json:"name" jsonschema:"experiment name"`
	Model       string    `json:"model" jsonschema:"model name: linear, binary:probability, binary:linear, centroid, or constant:<label>"`
	Label       string    `json:"label" jsonschema:"categorical field to predict: species, island, or sex"`
	Features    []string  `json:"features" jsonschema:"numeric feature fields"`
	Proportions []float64 `json:"proportions" jsonschema:"partition proportions; the first partition trains the model"`
	Seed        int64     `json:"seed" jsonschema:"random seed for the split"`
}

// ExperimentEvaluation summarizes one evaluated partition.
type ExperimentEvaluation struct {
	Partition string      `json:"partition" jsonschema:"partition name (validation, test, ...)"`
	Size      int         `json:"size" jsonschema:"partition record count"`
	Accuracy  float64     `json:"accuracy" jsonschema:"fraction of correct predictions"`
	Labels    []string    `json:"labels" jsonschema:"confusion matrix label order"`
	Counts    [][]int     `json:"counts" jsonschema:"confusion matrix counts"`
}

// ExperimentRunResult represents the MCP tool output for an experiment
// run.
type ExperimentRunResult struct {
	RunID          string                 `json:"run_id" jsonschema:"assigned run identifier"`
	Name           string                 `json:"name" jsonschema:"experiment name"`
	Seed           int64                  `json:"seed" jsonschema:"seed used for the split"`
	PartitionSizes []int                  `json:"partition_sizes" jsonschema:"record count per partition, training first"`
	Evaluations    []ExperimentEvaluation `json:"evaluations" jsonschema:"scores per evaluation partition"`
}

func experimentRunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "experiment_run",
		Description: "Runs one split/fit/evaluate experiment against the server's dataset and reports accuracy per partition.",
	}
}

func (s *Server) experimentRunHandler(ctx context.Context, _ *mcp.CallToolRequest, input ExperimentRunInput) (*mcp.CallToolResult, ExperimentRunResult, error) {
	label, err := dataset.ParseField(input.Label)
	if err != nil {
		return nil, ExperimentRunResult{}, fmt.Errorf("invalid label: %w", err)
	}
	features := make([]dataset.Field, 0, len(input.Features))
	for _, name := range input.Features {
		feature, err := dataset.ParseField(name)
		if err != nil {
			return nil, ExperimentRunResult{}, fmt.Errorf("invalid feature: %w", err)
		}
		features = append(features, feature)
	}
	fitter, err := script.NewFitter(input.Model, label, features)
	if err != nil {
		return nil, ExperimentRunResult{}, fmt.Errorf("invalid model: %w", err)
	}

	ds, err := s.source()
	if err != nil {
		return nil, ExperimentRunResult{}, fmt.Errorf("load dataset: %w", err)
	}

	report, err := s.service.Run(ctx, experiment.Definition{
		Name:        input.Name,
		Label:       label,
		Features:    features,
		Proportions: input.Proportions,
		Seed:        input.Seed,
		Fitter:      fitter,
	}, ds)
	if err != nil {
		return nil, ExperimentRunResult{}, fmt.Errorf("experiment run failed: %w", err)
	}

	evaluations := make([]ExperimentEvaluation, 0, len(report.Evaluations))
	for _, evaluation := range report.Evaluations {
		evaluations = append(evaluations, ExperimentEvaluation{
			Partition: evaluation.Partition,
			Size:      evaluation.Size,
			Accuracy:  evaluation.Result.Accuracy,
			Labels:    evaluation.Result.Labels,
			Counts:    evaluation.Result.Counts,
		})
	}

	return nil, ExperimentRunResult{
		RunID:          report.RunID,
		Name:           report.Name,
		Seed:           report.Seed,
		PartitionSizes: report.PartitionSizes,
		Evaluations:    evaluations,
	}, nil
}

// RunListPayload is the JSON payload served by the runs resource.
type RunListPayload struct {
	Runs []storage.Run `json:"runs"`
}

func (s *Server) runsResourceHandler(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run persistence is not configured")
	}

	runs, err := s.store.ListRuns(ctx, runsListLimit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	data, err := json.MarshalIndent(RunListPayload{Runs: runs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run list: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      runsResourceURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
