package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const getRecipeToolName = "get_recipe"

// getRecipeSchema is the parameter schema of the get_recipe tool. The same
// document is sent to the model and used to validate the returned arguments.
const getRecipeSchema = `{
  "type": "object",
  "properties": {
    "ingredients": {
      "type": "string",
      "minLength": 1,
      "description": "Comma-separated list of ingredients"
    },
    "diet": {
      "type": ["string", "null"],
      "description": "Diet restriction such as vegetarian, vegan or gluten free"
    },
    "maxTime": {
      "type": ["integer", "null"],
      "minimum": 0,
      "description": "Maximum preparation time in minutes"
    }
  },
  "required": ["ingredients"]
}`

type getRecipeArgs struct {
	Ingredients string   `json:"ingredients"`
	Diet        *string  `json:"diet"`
	MaxTime     *float64 `json:"maxTime"`
}

// argumentValidator checks tool call arguments against getRecipeSchema
type argumentValidator struct {
	schema *jsonschema.Schema
}

func newArgumentValidator() (*argumentValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("get_recipe.json", bytes.NewReader([]byte(getRecipeSchema))); err != nil {
		return nil, fmt.Errorf("failed to load get_recipe schema: %w", err)
	}
	schema, err := compiler.Compile("get_recipe.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile get_recipe schema: %w", err)
	}
	return &argumentValidator{schema: schema}, nil
}

// Parse validates raw tool arguments and converts them into criteria
func (v *argumentValidator) Parse(raw string) (*recipe.SearchCriteria, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("tool arguments are not JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("tool arguments do not match schema: %w", err)
	}

	var args getRecipeArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("failed to decode tool arguments: %w", err)
	}

	diet := ""
	if args.Diet != nil {
		diet = *args.Diet
	}
	maxTime := 0
	if args.MaxTime != nil {
		maxTime = int(math.Round(*args.MaxTime))
	}

	criteria := recipe.NewSearchCriteria(args.Ingredients, diet, maxTime)
	return &criteria, nil
}

// toolParameters returns the schema as the generic map the SDK sends
func toolParameters() map[string]interface{} {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(getRecipeSchema), &params); err != nil {
		panic(fmt.Sprintf("invalid get_recipe schema: %v", err))
	}
	return params
}
