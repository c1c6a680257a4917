package classify

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
)

// Entities are the structured descriptors extracted from a cohort query.
type Entities struct {
	Verticals []string `json:"verticals"`
	Regions   []string `json:"regions"`
	Signals   []string `json:"signals"`
}

// Reformulation is the expansion of a cohort description into concrete
// search strings plus extracted entities.
type Reformulation struct {
	Queries  []string `json:"queries"`
	Entities Entities `json:"entities"`
}

// Reformulator expands a cohort description into engine-ready queries.
// Implementations are expected to be model-backed and opaque; the pipeline
// only relies on this contract.
type Reformulator interface {
	Reformulate(ctx context.Context, text string, filters model.FilterState) (*Reformulation, error)
}

const reformulatePrompt = `You turn a sales prospecting request into search engine queries.
Given the request and optional filters, produce 1-3 concrete search query strings and extract structured entities.

Respond with ONLY valid JSON, no other text:
{"queries": ["..."], "entities": {"verticals": [], "regions": [], "signals": []}}`

// anthropicReformulator is the production Reformulator backed by Claude.
type anthropicReformulator struct {
	client sdk.Client
	model  string
}

// NewAnthropicReformulator creates the model-backed reformulator.
func NewAnthropicReformulator(apiKey, modelName string) Reformulator {
	return &anthropicReformulator{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
	}
}

func (r *anthropicReformulator) Reformulate(ctx context.Context, text string, filters model.FilterState) (*Reformulation, error) {
	var sb strings.Builder
	sb.WriteString("Request: ")
	sb.WriteString(text)
	if len(filters.Verticals) > 0 {
		sb.WriteString("\nVerticals: " + strings.Join(filters.Verticals, ", "))
	}
	if len(filters.Regions) > 0 {
		sb.WriteString("\nRegions: " + strings.Join(filters.Regions, ", "))
	}
	if len(filters.SizeBuckets) > 0 {
		sb.WriteString("\nSize: " + strings.Join(filters.SizeBuckets, ", "))
	}
	if len(filters.SignalTypes) > 0 {
		sb.WriteString("\nSignals: " + strings.Join(filters.SignalTypes, ", "))
	}

	msg, err := r.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(r.model),
		MaxTokens: 512,
		System: []sdk.TextBlockParam{
			{Text: reformulatePrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(sb.String())),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "classify: reformulate request")
	}

	var raw string
	for _, block := range msg.Content {
		if block.Type == "text" {
			raw += block.Text
		}
	}

	ref, err := parseReformulation(raw)
	if err != nil {
		// A malformed model response is not fatal: fall back to the raw
		// text as the single query.
		zap.L().Warn("classify: unparseable reformulation, using raw text",
			zap.String("text", text),
			zap.Error(err),
		)
		return &Reformulation{Queries: []string{text}}, nil
	}
	return ref, nil
}

func parseReformulation(raw string) (*Reformulation, error) {
	// Tolerate fenced or prefixed output; take the outermost JSON object.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, eris.New("classify: no JSON object in response")
	}

	var ref Reformulation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ref); err != nil {
		return nil, eris.Wrap(err, "classify: unmarshal reformulation")
	}
	if len(ref.Queries) == 0 {
		return nil, eris.New("classify: reformulation has no queries")
	}
	return &ref, nil
}
