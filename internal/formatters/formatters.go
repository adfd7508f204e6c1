package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumalyzer/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry holds the default formatters
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	for dataType, render := range renderers {
		registry.RegisterFormatter("text", dataType, &DocumentFormatter{dataType: dataType, render: render, markdown: false})
		registry.RegisterFormatter("markdown", dataType, &DocumentFormatter{dataType: dataType, render: render, markdown: true})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CritiqueResult:
		return "CritiqueResult"
	case types.JDMatchResult:
		return "JDMatchResult"
	case []types.BulletRewrite:
		return "BulletRewrites"
	case types.CoverLetter:
		return "CoverLetter"
	case types.EnhancedResume:
		return "EnhancedResume"
	case types.BattleResult:
		return "BattleResult"
	case types.ChatReply:
		return "ChatReply"
	case []types.SkillPlan:
		return "LearningPath"
	case types.InterviewScript:
		return "InterviewScript"
	case string:
		return "Text"
	case types.SkillGraph:
		return "SkillGraph"
	case []types.AnalysisRecord:
		return "History"
	case *types.AnalysisRecord:
		return "AnalysisRecord"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// DocumentFormatter renders one result type as plain text or markdown
type DocumentFormatter struct {
	dataType string
	render   func(*document, any) error
	markdown bool
}

func (df *DocumentFormatter) Format(data any) (string, error) {
	doc := &document{markdown: df.markdown}
	if err := df.render(doc, data); err != nil {
		return "", err
	}
	return doc.String(), nil
}

func (df *DocumentFormatter) SupportedType() string {
	return df.dataType
}

// document writes headings, fields and lists in either text or markdown style
type document struct {
	strings.Builder
	markdown bool
}

func (d *document) title(s string) {
	if d.markdown {
		fmt.Fprintf(d, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(d, "=== %s ===\n\n", strings.ToUpper(s))
}

func (d *document) section(s string) {
	if d.markdown {
		fmt.Fprintf(d, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(d, "--- %s ---\n", s)
}

func (d *document) field(label string, value any) {
	if d.markdown {
		fmt.Fprintf(d, "**%s:** %v\n\n", label, value)
		return
	}
	fmt.Fprintf(d, "%s: %v\n", label, value)
}

func (d *document) paragraph(s string) {
	d.WriteString(strings.TrimSpace(s))
	d.WriteString("\n\n")
}

// list writes items under a section heading. Empty lists are skipped.
func (d *document) list(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	d.section(heading)
	for _, item := range items {
		fmt.Fprintf(d, "- %s\n", item)
	}
	d.WriteString("\n")
}

func (d *document) numbered(i int, s string) {
	if d.markdown {
		fmt.Fprintf(d, "### %d. %s\n\n", i, s)
		return
	}
	fmt.Fprintf(d, "%d. %s\n", i, s)
}

func (d *document) detail(label, value string) {
	if value == "" {
		return
	}
	if d.markdown {
		fmt.Fprintf(d, "**%s:** %s\n\n", label, value)
		return
	}
	fmt.Fprintf(d, "   %s: %s\n", label, value)
}

func (d *document) end() {
	if !d.markdown {
		d.WriteString("\n")
	}
}
