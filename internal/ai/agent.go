// Package ai drafts manual journal entries from natural-language event
// descriptions using OpenAI structured output. Drafts are proposals only;
// nothing here posts to the ledger.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"bookkeeper/internal/core"
)

type Drafter struct {
	client *openai.Client
}

func NewDrafter(apiKey string) *Drafter {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Drafter{client: &client}
}

// DraftEntry asks the model to propose a balanced journal entry for the
// described business event, constrained to the given chart of accounts. The
// returned draft has passed Validate; committing it remains the caller's
// decision.
func (d *Drafter) DraftEntry(ctx context.Context, text string, chart []core.Account) (*core.EntryDraft, error) {
	prompt := fmt.Sprintf(`You are an expert accountant.
Your goal is to interpret a business event described in natural language and propose a double-entry journal entry.
You MUST use the provided Chart of Accounts.
Rules:
1. Use ONLY account codes from the list below.
2. Debits MUST equal Credits.
3. Amounts must be exact strings (e.g. "100.00").
4. Provide a confidence score (0.0-1.0).
5. Explain your reasoning.

Chart of Accounts:
%s

Event: %s`, formatChart(chart), text)

	// The schema is reflected from the draft struct so the two never drift.
	schemaJSON, err := json.Marshal(draftSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "journal_entry_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft for a double-entry accounting journal entry"),
				},
			},
		},
	}

	resp, err := d.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft core.EntryDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}

	return &draft, nil
}

// formatChart renders the chart of accounts as one "code name (type)" line
// per account for the prompt.
func formatChart(chart []core.Account) string {
	var b strings.Builder
	for _, a := range chart {
		fmt.Fprintf(&b, "%s %s (%s)\n", a.Code, a.Name, a.Type)
	}
	return b.String()
}

func draftSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.EntryDraft
	return reflector.Reflect(v)
}
