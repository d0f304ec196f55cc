package level

import (
	_ "embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// decodeCUE evaluates a CUE level against #Level and decodes the concrete
// result. The file's top level is the level itself.
func decodeCUE(data []byte, name string) (File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return File{}, fromCUE(err)
	}

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return File{}, fromCUE(err)
	}

	v = schema.LookupPath(cue.ParsePath("#Level")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return File{}, fromCUE(err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return File{}, fromCUE(err)
	}
	return f, nil
}
