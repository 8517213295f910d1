package utils

import (
	"encoding/json"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

// TestConfig is a sample config struct for testing
type TestConfig struct {
	Name    string   `json:"name" jsonschema:"description=The name of the config"`
	Value   int      `json:"value" jsonschema:"description=A numeric value"`
	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags,omitempty"`
}

type pointWithOptional struct {
	Price float64                  `json:"price"`
	MA    optional.Option[float64] `json:"ma"`
}

func (suite *UtilsTestSuite) TestRound2() {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "already rounded", input: 100, expected: 100},
		{name: "round down", input: 45000.123, expected: 45000.12},
		{name: "half rounds on the shortest decimal form", input: 1.005, expected: 1.01},
		{name: "negative half away from zero", input: -2.345, expected: -2.35},
		{name: "rsi sentinel", input: 100 - 100.0/101.0, expected: 99.01},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, Round2(tt.input))
		})
	}
}

func (suite *UtilsTestSuite) TestRoundTo() {
	suite.Equal(3.1416, RoundTo(3.14159265, 4))
	suite.Equal(3.0, RoundTo(3.14159265, 0))
}

func (suite *UtilsTestSuite) TestToJSONSchemaSimple() {
	schema, err := ToJSONSchema(TestConfig{})
	suite.NoError(err)
	suite.NotEmpty(schema)

	var result map[string]any
	suite.NoError(json.Unmarshal([]byte(schema), &result))

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "name")
	suite.Contains(properties, "value")
	suite.Contains(properties, "enabled")
	suite.Contains(properties, "tags")
}

func (suite *UtilsTestSuite) TestToJSONSchemaOptionalIsNullableNumber() {
	schema, err := ToJSONSchema(pointWithOptional{})
	suite.NoError(err)

	var result map[string]any
	suite.NoError(json.Unmarshal([]byte(schema), &result))

	properties := result["properties"].(map[string]any)
	ma := properties["ma"].(map[string]any)
	oneOf, ok := ma["oneOf"].([]any)
	suite.Require().True(ok)
	suite.Len(oneOf, 2)
	suite.Equal("number", oneOf[0].(map[string]any)["type"])
	suite.Equal("null", oneOf[1].(map[string]any)["type"])
}
