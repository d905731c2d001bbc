// Package prompt provides the prompt library for LLM interactions.
// Prompts are JSON files: a default set is compiled into the binary and a
// resources directory can override any of them at runtime without a rebuild.
package prompt

// Known prompt identifiers.
const (
	ProfileAuditID = "analysis.profile_audit"
)

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID               string           `json:"id"`                   // e.g. "analysis.profile_audit"
	Name             string           `json:"name"`                 // Human-readable name
	Category         string           `json:"category"`             // Folder the prompt was loaded from
	Description      string           `json:"description"`          // Description of prompt purpose
	SystemPrompt     string           `json:"system_prompt"`        // The system prompt content
	UserPromptTmpl   string           `json:"user_prompt_template"` // Go template for user prompt
	ResponseSchemaID string           `json:"response_schema_ref"`  // Name of the typed result the prompt asks for
	Variables        []PromptVariable `json:"variables"`            // Variables used in template
	Version          string           `json:"version"`
}

// PromptVariable defines a variable used in a prompt template
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int, float, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// PromptExecutionContext holds runtime values for prompt execution
type PromptExecutionContext struct {
	Variables map[string]interface{}
}

// NewContext creates a new execution context
func NewContext() *PromptExecutionContext {
	return &PromptExecutionContext{
		Variables: make(map[string]interface{}),
	}
}

// Set adds a variable to the context
func (c *PromptExecutionContext) Set(key string, value interface{}) *PromptExecutionContext {
	c.Variables[key] = value
	return c
}
