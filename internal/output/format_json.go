package output

import (
	json "github.com/goccy/go-json"

	"ratecast/internal/domain"
)

// JSONFormatter emits the forecast response as indented JSON, suitable for
// piping into other tools.
type JSONFormatter struct{}

func (jf *JSONFormatter) Name() string { return "json" }

func (jf *JSONFormatter) Format(resp *domain.ForecastResponse, _ Options) ([]byte, error) {
	return json.MarshalIndent(resp, "", "  ")
}
