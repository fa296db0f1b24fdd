package metadata

import (
	"encoding/json"
	"fmt"
)

// A Formatter converts the external tool's stdout into the response
// body served to the HTTP client. Implementations must return an error
// for output they cannot interpret, rather than panic.
type Formatter interface {
	Format(stdout []byte) (body []byte, contentType string, err error)
}

// AccessTokenFormatter wraps the tool's stdout, assumed to be the bare
// token, in the JSON document the real metadata service serves.
type AccessTokenFormatter struct{}

func (AccessTokenFormatter) Format(stdout []byte) ([]byte, string, error) {
	body, err := json.Marshal(map[string]string{"access_token": string(stdout)})
	if err != nil {
		return nil, "", fmt.Errorf("access token: %w", err)
	}
	return body, "application/json", nil
}

// ProjectIDFormatter extracts the project id from the tool's JSON
// configuration dump, of the form {"core": {"project": "x"}}, and
// emits it as a JSON-encoded string.
type ProjectIDFormatter struct{}

func (ProjectIDFormatter) Format(stdout []byte) ([]byte, string, error) {
	var dump struct {
		Core struct {
			Project string `json:"project"`
		} `json:"core"`
	}
	if err := json.Unmarshal(stdout, &dump); err != nil {
		return nil, "", fmt.Errorf("project id: %.40q: %w", stdout, err)
	}
	if dump.Core.Project == "" {
		return nil, "", fmt.Errorf("project id: %.40q: no core.project in output", stdout)
	}
	body, err := json.Marshal(dump.Core.Project)
	if err != nil {
		return nil, "", fmt.Errorf("project id: %w", err)
	}
	return body, "application/json", nil
}

// PlainTextFormatter passes stdout through unchanged. Not used by the
// standard entries, but custom entries with plain string values want
// it.
type PlainTextFormatter struct{}

func (PlainTextFormatter) Format(stdout []byte) ([]byte, string, error) {
	return stdout, "text/plain", nil
}
