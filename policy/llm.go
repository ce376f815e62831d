package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/llm"
	"github.com/govmesh/govmesh/logging"
)

const parsePromptTemplate = `Parse this compliance policy into structured JSON rules.

Policy: %s

Return only a JSON object of this shape:
{
  "rules": [
    {
      "field": "field_name",
      "type": "string|integer|number|boolean|array|object|email|phone",
      "required": true,
      "constraints": {"min": 0, "max": 100, "min_items": 1, "max_items": 10, "pattern": ""}
    }
  ]
}`

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// LLMParser asks a text generator to structure policy text and falls back to
// the deterministic stub whenever the generator fails or returns something
// unusable. The returned rule set is always structurally validated.
type LLMParser struct {
	generator llm.Generator
	fallback  Parser
	logger    logging.Logger
}

// LLMParserOptions configure an LLMParser.
type LLMParserOptions struct {
	Logger logging.Logger
}

// NewLLMParser creates an LLMParser backed by generator.
func NewLLMParser(generator llm.Generator, optFns ...func(o *LLMParserOptions)) *LLMParser {
	opts := LLMParserOptions{Logger: logging.NewDefaultSlogLogger()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LLMParser{
		generator: generator,
		fallback:  NewStubParser(),
		logger:    opts.Logger,
	}
}

// Parse implements Parser.
func (p *LLMParser) Parse(ctx context.Context, policyID, text string) (core.RuleSet, error) {
	completion, err := p.generator.Generate(ctx, fmt.Sprintf(parsePromptTemplate, text))
	if err != nil {
		p.logger.Warn("generator failed, using stub parser", "policy_id", policyID, "error", err)
		return p.fallback.Parse(ctx, policyID, text)
	}

	rs, err := decodeRuleSet(policyID, completion)
	if err != nil {
		p.logger.Warn("unusable generator output, using stub parser", "policy_id", policyID, "error", err)
		return p.fallback.Parse(ctx, policyID, text)
	}
	return rs, nil
}

type wireRuleSet struct {
	Rules []wireRule `json:"rules"`
}

type wireRule struct {
	Field       string           `json:"field"`
	Type        string           `json:"type"`
	Required    bool             `json:"required"`
	Constraints core.Constraints `json:"constraints"`
}

// decodeRuleSet extracts the first JSON object from completion text and maps
// it onto a validated rule set.
func decodeRuleSet(policyID, completion string) (core.RuleSet, error) {
	raw := jsonObjectRe.FindString(completion)
	if raw == "" {
		return core.RuleSet{}, core.NewError(core.KindInvalidRuleDefinition, "no JSON object in completion")
	}

	var wire wireRuleSet
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return core.RuleSet{}, core.WrapError(core.KindInvalidRuleDefinition, err, "malformed completion JSON")
	}

	rules := make([]core.Rule, 0, len(wire.Rules))
	for _, w := range wire.Rules {
		rules = append(rules, core.Rule{
			Field:       w.Field,
			Type:        core.FieldType(w.Type),
			Required:    w.Required,
			Constraints: w.Constraints,
		})
	}

	rs := core.RuleSet{
		PolicyID:  policyID,
		Version:   1,
		Rules:     rules,
		CreatedAt: time.Now().UTC(),
	}
	if err := rs.Validate(); err != nil {
		return core.RuleSet{}, err
	}
	return rs, nil
}
