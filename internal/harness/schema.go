package harness

import (
	_ "embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// checkSchema validates decoded YAML against #Scenario. A fresh CUE
// context is used per call; contexts are not safe for concurrent use.
func checkSchema(raw any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: "schema does not compile", Err: err}
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: "cannot encode scenario", Err: err}
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: "scenario does not match schema", Err: err}
	}
	return nil
}
