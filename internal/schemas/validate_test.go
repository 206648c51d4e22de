package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"}
	}
}`

func personValidator() *Schema {
	return &Schema{Name: "person", Raw: personSchema}
}

func TestSchemaValidate_Valid(t *testing.T) {
	assert.NoError(t, personValidator().Validate(`{"name": "Ada", "age": 36}`))
}

func TestSchemaValidate_MissingField(t *testing.T) {
	err := personValidator().Validate(`{"age": 36}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Summary(), "name")
}

func TestSchemaValidate_WrongType(t *testing.T) {
	err := personValidator().Validate(`{"name": "Ada", "age": "old"}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "age", validationErr.Errors[0].Field)
}

func TestSchemaValidate_MalformedDocument(t *testing.T) {
	err := personValidator().Validate(`{"name": `)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, DocumentPath, loadErr.Path)
}

func TestSchemaValidate_MalformedSchema(t *testing.T) {
	err := (&Schema{Name: "broken", Raw: `{"type": 12}`}).Validate(`{}`)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "broken", loadErr.Path)
}

func TestStageSchemas_Load(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.Equal(t, []string{Bullets, Matching, Requirements}, names)

	for _, name := range names {
		s, err := Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, "object", s.Document["type"])
		assert.NotEmpty(t, s.Document["required"])
	}

	_, err = Get("nope")
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestRequirementsSchema(t *testing.T) {
	s := MustGet(Requirements)

	valid := `{
		"jobRequirements": [
			{"requirement": "5+ years of Go", "importance": "critical", "category": "years_experience", "minimumYears": 5}
		],
		"allKeywords": ["Go"]
	}`
	assert.NoError(t, s.Validate(valid))

	badCategory := `{
		"jobRequirements": [{"requirement": "Go", "importance": "high", "category": "hobby"}],
		"allKeywords": []
	}`
	assert.Error(t, s.Validate(badCategory))

	missingImportance := `{
		"jobRequirements": [{"requirement": "Go", "category": "technical_skill"}],
		"allKeywords": []
	}`
	assert.Error(t, s.Validate(missingImportance))
}

func TestMatchingSchema(t *testing.T) {
	s := MustGet(Matching)

	assert.NoError(t, s.Validate(`{
		"matchedRequirements": [
			{"jobRequirement": "Go", "experienceEvidence": "Built services in Go", "experienceSource": "Acme - Engineer", "matchType": "exact", "evidenceStrength": "demonstrated"}
		],
		"unmatchedRequirements": [{"requirement": "Rust", "importance": "low"}]
	}`))

	assert.Error(t, s.Validate(`{"unmatchedRequirements": []}`), "matchedRequirements is required")
	assert.Error(t, s.Validate(`{
		"matchedRequirements": [{"jobRequirement": "Go", "experienceEvidence": "x"}],
		"unmatchedRequirements": []
	}`), "experienceSource is required")
}

func TestBulletsSchema(t *testing.T) {
	s := MustGet(Bullets)

	assert.NoError(t, s.Validate(`{
		"bulletPoints": {
			"Acme - Engineer": [{"text": "Cut latency 40%", "experienceId": "exp-1", "keywordsUsed": ["latency"], "relevanceScore": 0.9}]
		},
		"keywordsUsed": ["latency"],
		"keywordsNotUsed": []
	}`))

	tooMany := `{"bulletPoints": {"Acme - Engineer": [` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1},` +
		`{"text": "a", "experienceId": "1", "keywordsUsed": [], "relevanceScore": 1}` +
		`]}, "keywordsUsed": [], "keywordsNotUsed": []}`
	assert.Error(t, s.Validate(tooMany))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "(root)", Message: "matchedRequirements is required"},
		{Field: "unmatchedRequirements.0", Message: "importance is required"},
	}}
	assert.Equal(t, "validation failed: (root): matchedRequirements is required; unmatchedRequirements.0: importance is required", err.Error())
}

func TestSchema_ValidateReusesCompiledSchema(t *testing.T) {
	s := &Schema{Name: "person", Raw: personSchema}

	assert.NoError(t, s.Validate(`{"name": "Ada"}`))
	first := s.compiled
	require.NotNil(t, first)

	assert.Error(t, s.Validate(`{"age": 1}`))
	assert.Same(t, first, s.compiled)

	broken := &Schema{Name: "broken", Raw: `{"type": 12}`}
	var loadErr *SchemaLoadError
	require.ErrorAs(t, broken.Validate(`{}`), &loadErr)
	assert.Equal(t, "broken", loadErr.Path)
}
