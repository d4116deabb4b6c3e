package shaderedit

// handle to a shader object owned by a `Compiler`
type ShaderObject uint32

// the shader compiler capability, shaped like the GL shader object calls.
// One compiler is reused for every check; checks never overlap.
type Compiler interface {
	CreateShaderObject(stage Stage) ShaderObject
	SetSource(shader ShaderObject, source string)
	Compile(shader ShaderObject)
	// empty string means no diagnostics
	DiagnosticLog(shader ShaderObject) string
	DeleteShaderObject(shader ShaderObject)
}
