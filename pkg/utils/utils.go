package utils

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// RoundTo rounds value half away from zero to the given number of decimal places.
// Rounding applies to the shortest decimal form of value, not its exact binary
// expansion, so 1.005 rounds to 1.01 where a binary toFixed(2) gives 1.00.
func RoundTo(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()

	return rounded
}

// Round2 rounds value to two decimal places, the precision every emitted price uses.
func Round2(value float64) float64 {
	return RoundTo(value, 2)
}

// ToJSONSchema converts a struct to a JSON schema. Optional floats are
// described as number-or-null, matching how they marshal.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.Mapper = mapOptional
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

var optionalFloatType = reflect.TypeOf(optional.None[float64]())

func mapOptional(t reflect.Type) *jsonschema.Schema {
	if t != optionalFloatType {
		return nil
	}

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "null"},
		},
	}
}
