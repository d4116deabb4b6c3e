package shaderedit

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// a known command that could not be applied to the current state without
// being a desync, e.g. an edit payload the editor rejects. Ignored.
var errIgnored = errors.New("Ignored.")

// applies the project service's command log to the asset model and its projection.
// Commands are applied one at a time in the order given. The applier is not
// safe for concurrent use; the session serializes calls.
type Applier struct {
	asset      *ShaderAsset
	editors    map[Stage]TextEditor
	stages     map[Stage]*stageStateMachine
	checker    *StageChecker
	projection Projection
	previewer  Previewer
}

func NewApplier(
	asset *ShaderAsset,
	vertexEditor TextEditor,
	fragmentEditor TextEditor,
	checker *StageChecker,
	projection Projection,
	previewer Previewer,
) *Applier {
	return &Applier{
		asset: asset,
		editors: map[Stage]TextEditor{
			StageVertex:   vertexEditor,
			StageFragment: fragmentEditor,
		},
		stages: map[Stage]*stageStateMachine{
			StageVertex:   newStageStateMachine(StageVertex, asset.Program(StageVertex)),
			StageFragment: newStageStateMachine(StageFragment, asset.Program(StageFragment)),
		},
		checker:    checker,
		projection: projection,
		previewer:  previewer,
	}
}

func (self *Applier) Asset() *ShaderAsset {
	return self.asset
}

func (self *Applier) StageView(stage Stage) StageView {
	return self.stages[stage].view()
}

// projects the initial snapshot. Stages whose draft differs from the committed
// text are checked immediately.
func (self *Applier) Prime() {
	for _, uniform := range self.asset.Uniforms() {
		self.projection.UniformAdded(*uniform)
	}
	self.projection.UseLightUniformsChanged(self.asset.UseLightUniforms)
	for _, attribute := range self.asset.Attributes() {
		self.projection.AttributeAdded(*attribute)
	}

	for _, stage := range Stages {
		program := self.asset.Program(stage)
		self.editors[stage].SetText(program.DraftText)
		if program.HasDraft() {
			self.check(stage)
		}
		self.projection.StageChanged(self.stages[stage].view())
	}

	self.previewer.Refresh()
}

// unknown commands and commands with malformed arguments are ignored and return nil.
// The only error is a `*ContractError`, which means the model is out of sync.
func (self *Applier) Apply(name string, args []any) error {
	command, err := DecodeCommand(name, args)
	if err != nil {
		glog.V(1).Infof("[a]ignore %s: %s\n", name, err)
		return nil
	}
	return self.ApplyCommand(command)
}

func (self *Applier) ApplyCommand(command Command) error {
	glog.V(2).Infof("[a]%s\n", command.CommandName())

	var err error
	isEdit := false
	switch v := command.(type) {
	case *SetPropertyCommand:
		err = self.setProperty(v)
	case *NewUniformCommand:
		err = self.newUniform(v)
	case *DeleteUniformCommand:
		err = self.deleteUniform(v)
	case *SetUniformPropertyCommand:
		err = self.setUniformProperty(v)
	case *NewAttributeCommand:
		err = self.newAttribute(v)
	case *DeleteAttributeCommand:
		err = self.deleteAttribute(v)
	case *SetAttributePropertyCommand:
		err = self.setAttributeProperty(v)
	case *EditShaderCommand:
		isEdit = true
		err = self.editShader(v)
	case *SaveShaderCommand:
		err = self.saveShader(v)
	default:
		glog.V(1).Infof("[a]ignore %T\n", command)
		return nil
	}

	if err != nil {
		var contractErr *ContractError
		if errors.As(err, &contractErr) {
			contractErr.Command = command.CommandName()
			return contractErr
		}
		glog.V(1).Infof("[a]ignore %s: %s\n", command.CommandName(), err)
		return nil
	}

	// text edits do not refresh a preview of another source on every keystroke
	if !(isEdit && self.previewer.PreviewSource() != PreviewSourceAsset) {
		self.previewer.Refresh()
	}
	return nil
}

func (self *Applier) setProperty(command *SetPropertyCommand) error {
	switch command.Path {
	case PropertyUseLightUniforms:
		useLightUniforms, ok := command.Value.(bool)
		if !ok {
			return fmt.Errorf("%w %s must be a bool", errIgnored, command.Path)
		}
		self.asset.UseLightUniforms = useLightUniforms
		self.projection.UseLightUniformsChanged(useLightUniforms)
	default:
		glog.V(1).Infof("[a]ignore property %s\n", command.Path)
	}
	return nil
}

func (self *Applier) newUniform(command *NewUniformCommand) error {
	if err := self.asset.AddUniform(command.Uniform); err != nil {
		return err
	}
	self.projection.UniformAdded(*command.Uniform)
	return nil
}

func (self *Applier) deleteUniform(command *DeleteUniformCommand) error {
	if err := self.asset.RemoveUniform(command.Id); err != nil {
		return err
	}
	self.projection.UniformRemoved(command.Id)
	return nil
}

func (self *Applier) setUniformProperty(command *SetUniformPropertyCommand) error {
	uniform, ok := self.asset.Uniform(command.Id)
	if !ok {
		return contractViolation(command.CommandName(), command.Id, ErrUnknownUniform)
	}

	switch command.Key {
	case "value":
		// the value shape follows the uniform's current type
		value, err := UniformValueFromWire(uniform.Type, command.Value)
		if err != nil {
			return fmt.Errorf("%w %s", errIgnored, err)
		}
		if err := self.asset.SetUniformValue(command.Id, value); err != nil {
			return err
		}
		self.projection.UniformFieldChanged(*uniform, command.Key)
	case "type":
		typeStr, _ := command.Value.(string)
		uniformType, err := ParseUniformType(typeStr)
		if err != nil {
			return fmt.Errorf("%w %s", errIgnored, err)
		}
		if err := self.asset.SetUniformType(command.Id, uniformType); err != nil {
			return err
		}
		self.projection.UniformFieldChanged(*uniform, command.Key)
		self.projection.UniformValueInputsReset(*uniform)
	case "name":
		name, ok := command.Value.(string)
		if !ok {
			return fmt.Errorf("%w name must be a string", errIgnored)
		}
		if err := self.asset.SetUniformName(command.Id, name); err != nil {
			return err
		}
		self.projection.UniformFieldChanged(*uniform, command.Key)
	default:
		glog.V(1).Infof("[a]ignore uniform property %s\n", command.Key)
	}
	return nil
}

func (self *Applier) newAttribute(command *NewAttributeCommand) error {
	if err := self.asset.AddAttribute(command.Attribute); err != nil {
		return err
	}
	self.projection.AttributeAdded(*command.Attribute)
	return nil
}

func (self *Applier) deleteAttribute(command *DeleteAttributeCommand) error {
	if err := self.asset.RemoveAttribute(command.Id); err != nil {
		return err
	}
	self.projection.AttributeRemoved(command.Id)
	return nil
}

func (self *Applier) setAttributeProperty(command *SetAttributePropertyCommand) error {
	attribute, ok := self.asset.Attribute(command.Id)
	if !ok {
		return contractViolation(command.CommandName(), command.Id, ErrUnknownAttribute)
	}

	value, ok := command.Value.(string)
	if !ok {
		return fmt.Errorf("%w %s must be a string", errIgnored, command.Key)
	}
	var err error
	switch command.Key {
	case "name":
		err = self.asset.SetAttributeName(command.Id, value)
	case "type":
		err = self.asset.SetAttributeType(command.Id, value)
	default:
		glog.V(1).Infof("[a]ignore attribute property %s\n", command.Key)
		return nil
	}
	if err != nil {
		return err
	}
	self.projection.AttributeFieldChanged(*attribute, command.Key)
	return nil
}

func (self *Applier) editShader(command *EditShaderCommand) error {
	if err := self.editors[command.Stage].ReceiveEditOperation(command.Operation); err != nil {
		return fmt.Errorf("%w %s", errIgnored, err)
	}
	self.check(command.Stage)
	self.projection.StageChanged(self.stages[command.Stage].view())
	return nil
}

func (self *Applier) saveShader(command *SaveShaderCommand) error {
	stage := self.stages[command.Stage]
	stage.saved()
	glog.V(1).Infof("[a]%s %s\n", command.Stage, stage.state())
	self.projection.StageChanged(stage.view())
	return nil
}

// copies the editor text into the draft and compiles it
func (self *Applier) check(stage Stage) {
	program := self.asset.Program(stage)
	program.DraftText = self.editors[stage].CurrentText()
	var diagnostics []Diagnostic
	if glog.V(2) {
		Trace(fmt.Sprintf("[a]check %s", stage), func() {
			_, diagnostics = self.checker.Check(stage, program.DraftText)
		})
	} else {
		_, diagnostics = self.checker.Check(stage, program.DraftText)
	}
	self.stages[stage].checked(diagnostics)
	glog.V(1).Infof("[a]%s %s (%d diagnostics)\n", stage, self.stages[stage].state(), len(diagnostics))
}
