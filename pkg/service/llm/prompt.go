package llm

import (
	"bytes"
	"embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Error tags for categorization
var (
	ErrTagInvalidJSON     = goerr.NewTag("invalid_json")
	ErrTagEmptyResponse   = goerr.NewTag("empty_response")
	ErrTagTemplateFailure = goerr.NewTag("template_failure")
)

//go:embed templates/*.md
var templateFS embed.FS

var summarizeTemplate = template.Must(
	template.New("summarize.md").
		Funcs(template.FuncMap{"join": joinKeys}).
		ParseFS(templateFS, "templates/summarize.md"),
)

func joinKeys(keys []types.ProjectKey, sep string) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	return strings.Join(s, sep)
}

type promptData struct {
	ProjectKeys []types.ProjectKey
}

// instructions renders the system part of the prompt
func instructions(keys []types.ProjectKey) (string, error) {
	var buf bytes.Buffer
	if err := summarizeTemplate.Execute(&buf, promptData{ProjectKeys: keys}); err != nil {
		return "", goerr.Wrap(err, "failed to render summarize template", goerr.T(ErrTagTemplateFailure))
	}
	return buf.String(), nil
}

// userPayload renders the user part of the prompt as a JSON document
func userPayload(req *model.SummarizeRequest) (string, error) {
	payload := map[string]string{
		"week_ending": req.WeekEnding.String(),
		"project_key": req.ProjectKey.String(),
		"dpm":         req.DPM,
		"raw_update":  req.RawText,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal summarize payload")
	}
	return string(raw), nil
}

// parseResponse decodes a model response into a submission-shaped object.
// A single surrounding code fence is tolerated.
func parseResponse(text string) (model.RawSubmission, error) {
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}
	if body == "" {
		return nil, goerr.New("empty response from LLM", goerr.T(ErrTagEmptyResponse))
	}

	var raw model.RawSubmission
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response as JSON object",
			goerr.V("response", text),
			goerr.T(ErrTagInvalidJSON))
	}
	if raw == nil {
		return nil, goerr.New("LLM response is not a JSON object",
			goerr.V("response", text),
			goerr.T(ErrTagInvalidJSON))
	}
	return raw, nil
}
