package shaderedit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"
	"github.com/golang/glog"
)

type NagaCompilerSettings struct {
	// run IR validation after lowering
	Validate bool `yaml:"validate"`
	// require an entry point for the stage being checked
	RequireEntryPoint bool `yaml:"require_entry_point"`
}

func DefaultNagaCompilerSettings() *NagaCompilerSettings {
	return &NagaCompilerSettings{
		Validate:          true,
		RequireEntryPoint: true,
	}
}

type nagaShader struct {
	stage  Stage
	source string
	log    string
}

// compiles WGSL with naga and reports problems as a GL style info log,
// one `ERROR: 0:<line>: <message>` per problem. Problems without a source
// location are reported on line 0.
type NagaCompiler struct {
	settings *NagaCompilerSettings

	nextShader ShaderObject
	shaders    map[ShaderObject]*nagaShader
}

func NewNagaCompilerWithDefaults() *NagaCompiler {
	return NewNagaCompiler(DefaultNagaCompilerSettings())
}

func NewNagaCompiler(settings *NagaCompilerSettings) *NagaCompiler {
	return &NagaCompiler{
		settings:   settings,
		nextShader: 1,
		shaders:    map[ShaderObject]*nagaShader{},
	}
}

func (self *NagaCompiler) CreateShaderObject(stage Stage) ShaderObject {
	shader := self.nextShader
	self.nextShader += 1
	self.shaders[shader] = &nagaShader{
		stage: stage,
	}
	return shader
}

func (self *NagaCompiler) SetSource(shader ShaderObject, source string) {
	if s, ok := self.shaders[shader]; ok {
		s.source = source
	}
}

func (self *NagaCompiler) Compile(shader ShaderObject) {
	s, ok := self.shaders[shader]
	if !ok {
		return
	}
	s.log = formatLog(self.compile(s))
}

func (self *NagaCompiler) DiagnosticLog(shader ShaderObject) string {
	if s, ok := self.shaders[shader]; ok {
		return s.log
	}
	return ""
}

func (self *NagaCompiler) DeleteShaderObject(shader ShaderObject) {
	delete(self.shaders, shader)
}

type logEntry struct {
	line    int
	message string
}

func (self *NagaCompiler) compile(s *nagaShader) []logEntry {
	ast, err := naga.Parse(s.source)
	if err != nil {
		return parseErrorEntries(err)
	}

	module, err := naga.LowerWithSource(ast, s.source)
	if err != nil {
		return lowerErrorEntries(err)
	}

	entries := []logEntry{}
	if self.settings.Validate {
		validationErrors, err := naga.Validate(module)
		if err != nil {
			entries = append(entries, logEntry{message: err.Error()})
		}
		for _, validationError := range validationErrors {
			entries = append(entries, logEntry{message: validationError.Error()})
		}
	}

	if self.settings.RequireEntryPoint && !hasEntryPoint(module, s.stage) {
		entries = append(entries, logEntry{message: fmt.Sprintf("missing @%s entry point", s.stage)})
	}

	glog.V(2).Infof("[c]naga %s %d problem(s)\n", s.stage, len(entries))
	return entries
}

func parseErrorEntries(err error) []logEntry {
	var parseErr wgsl.ParseError
	if errors.As(err, &parseErr) {
		return []logEntry{{line: parseErr.Token.Line, message: parseErr.Message}}
	}
	return []logEntry{{message: err.Error()}}
}

func lowerErrorEntries(err error) []logEntry {
	var sourceErrs *wgsl.SourceErrors
	if errors.As(err, &sourceErrs) {
		entries := make([]logEntry, 0, sourceErrs.Len())
		for _, sourceErr := range *sourceErrs {
			entries = append(entries, logEntry{line: sourceErr.Span.Start.Line, message: sourceErr.Message})
		}
		return entries
	}
	var sourceErr *wgsl.SourceError
	if errors.As(err, &sourceErr) {
		return []logEntry{{line: sourceErr.Span.Start.Line, message: sourceErr.Message}}
	}
	return []logEntry{{message: err.Error()}}
}

func hasEntryPoint(module *ir.Module, stage Stage) bool {
	var irStage ir.ShaderStage
	switch stage {
	case StageVertex:
		irStage = ir.StageVertex
	case StageFragment:
		irStage = ir.StageFragment
	default:
		return false
	}
	for _, entryPoint := range module.EntryPoints {
		if entryPoint.Stage == irStage {
			return true
		}
	}
	return false
}

func formatLog(entries []logEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		// messages must stay on one log line
		message := strings.ReplaceAll(entry.message, "\n", " ")
		fmt.Fprintf(&b, "ERROR: 0:%d: %s\n", entry.line, message)
	}
	return b.String()
}
