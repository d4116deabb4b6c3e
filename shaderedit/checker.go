package shaderedit

import (
	"github.com/golang/glog"
)

// compiles a stage's text synchronously and returns diagnostics in user coordinates
type StageChecker struct {
	compiler   Compiler
	translator *Translator
}

func NewStageChecker(compiler Compiler, translator *Translator) *StageChecker {
	return &StageChecker{
		compiler:   compiler,
		translator: translator,
	}
}

func (self *StageChecker) Check(stage Stage, userText string) (isValid bool, diagnostics []Diagnostic) {
	fullSource, headerLineCount := self.translator.BuildSubmittedSource(stage, userText)

	shader := self.compiler.CreateShaderObject(stage)
	defer self.compiler.DeleteShaderObject(shader)
	self.compiler.SetSource(shader, fullSource)
	self.compiler.Compile(shader)
	rawLog := self.compiler.DiagnosticLog(shader)

	diagnostics = TranslateDiagnostics(stage, rawLog, headerLineCount)
	if glog.V(2) {
		for _, diagnostic := range diagnostics {
			glog.Infof("[c]%s\n", diagnostic)
		}
	}
	isValid = len(diagnostics) == 0
	return
}
