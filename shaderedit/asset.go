package shaderedit

import (
	"fmt"
	"slices"
)

type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

var Stages = []Stage{StageVertex, StageFragment}

func ParseStage(stageStr string) (Stage, error) {
	switch stageStr {
	case "vertex":
		return StageVertex, nil
	case "fragment":
		return StageFragment, nil
	default:
		return 0, fmt.Errorf("Unknown stage: %s", stageStr)
	}
}

func (self Stage) String() string {
	switch self {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(self))
	}
}

type ShaderProgram struct {
	// last text acknowledged as saved by the project service
	CommittedText string
	DraftText     string
}

func (self *ShaderProgram) HasDraft() bool {
	return self.DraftText != self.CommittedText
}

type Uniform struct {
	Id    string
	Name  string
	Type  UniformType
	Value UniformValue
}

type Attribute struct {
	Id   string
	Name string
	// semantic binding type, opaque to this package
	Type string
}

// lookup by id plus arrival order
type entryList[T any] struct {
	ids     []string
	entries map[string]T
}

func newEntryList[T any]() *entryList[T] {
	return &entryList[T]{
		entries: map[string]T{},
	}
}

func (self *entryList[T]) get(id string) (T, bool) {
	entry, ok := self.entries[id]
	return entry, ok
}

func (self *entryList[T]) add(id string, entry T) bool {
	if _, ok := self.entries[id]; ok {
		return false
	}
	self.ids = append(self.ids, id)
	self.entries[id] = entry
	return true
}

// survivors keep their relative order
func (self *entryList[T]) remove(id string) bool {
	if _, ok := self.entries[id]; !ok {
		return false
	}
	delete(self.entries, id)
	if i := slices.Index(self.ids, id); 0 <= i {
		self.ids = slices.Delete(self.ids, i, i+1)
	}
	return true
}

func (self *entryList[T]) list() []T {
	entries := make([]T, 0, len(self.ids))
	for _, id := range self.ids {
		entries = append(entries, self.entries[id])
	}
	return entries
}

func (self *entryList[T]) len() int {
	return len(self.ids)
}

// the local mirror of a shader asset held by the project service.
// it is owned by a single session and only mutated through the applier.
type ShaderAsset struct {
	VertexShader     ShaderProgram
	FragmentShader   ShaderProgram
	UseLightUniforms bool

	uniforms   *entryList[*Uniform]
	attributes *entryList[*Attribute]
}

func NewShaderAsset() *ShaderAsset {
	return &ShaderAsset{
		uniforms:   newEntryList[*Uniform](),
		attributes: newEntryList[*Attribute](),
	}
}

func (self *ShaderAsset) Program(stage Stage) *ShaderProgram {
	switch stage {
	case StageVertex:
		return &self.VertexShader
	case StageFragment:
		return &self.FragmentShader
	default:
		panic(fmt.Errorf("Unknown stage: %s", stage))
	}
}

func (self *ShaderAsset) Uniform(id string) (*Uniform, bool) {
	return self.uniforms.get(id)
}

// in arrival order
func (self *ShaderAsset) Uniforms() []*Uniform {
	return self.uniforms.list()
}

func (self *ShaderAsset) UniformCount() int {
	return self.uniforms.len()
}

func (self *ShaderAsset) AddUniform(uniform *Uniform) error {
	if uniform.Value.Type() != uniform.Type {
		return fmt.Errorf("Uniform %s value shape %s does not match type %s", uniform.Id, uniform.Value.Type(), uniform.Type)
	}
	if !self.uniforms.add(uniform.Id, uniform) {
		return contractViolation("", uniform.Id, ErrDuplicateId)
	}
	return nil
}

func (self *ShaderAsset) RemoveUniform(id string) error {
	if !self.uniforms.remove(id) {
		return contractViolation("", id, ErrUnknownUniform)
	}
	return nil
}

// stores the new type and resets the value to the default shape for that type
func (self *ShaderAsset) SetUniformType(id string, uniformType UniformType) error {
	uniform, ok := self.uniforms.get(id)
	if !ok {
		return contractViolation("", id, ErrUnknownUniform)
	}
	uniform.Type = uniformType
	uniform.Value = DefaultUniformValue(uniformType)
	return nil
}

func (self *ShaderAsset) SetUniformValue(id string, value UniformValue) error {
	uniform, ok := self.uniforms.get(id)
	if !ok {
		return contractViolation("", id, ErrUnknownUniform)
	}
	if value.Type() != uniform.Type {
		return fmt.Errorf("Uniform %s value shape %s does not match type %s", id, value.Type(), uniform.Type)
	}
	uniform.Value = value
	return nil
}

func (self *ShaderAsset) SetUniformName(id string, name string) error {
	uniform, ok := self.uniforms.get(id)
	if !ok {
		return contractViolation("", id, ErrUnknownUniform)
	}
	uniform.Name = name
	return nil
}

func (self *ShaderAsset) Attribute(id string) (*Attribute, bool) {
	return self.attributes.get(id)
}

// in arrival order
func (self *ShaderAsset) Attributes() []*Attribute {
	return self.attributes.list()
}

func (self *ShaderAsset) AddAttribute(attribute *Attribute) error {
	if !self.attributes.add(attribute.Id, attribute) {
		return contractViolation("", attribute.Id, ErrDuplicateId)
	}
	return nil
}

func (self *ShaderAsset) RemoveAttribute(id string) error {
	if !self.attributes.remove(id) {
		return contractViolation("", id, ErrUnknownAttribute)
	}
	return nil
}

func (self *ShaderAsset) SetAttributeName(id string, name string) error {
	attribute, ok := self.attributes.get(id)
	if !ok {
		return contractViolation("", id, ErrUnknownAttribute)
	}
	attribute.Name = name
	return nil
}

func (self *ShaderAsset) SetAttributeType(id string, attributeType string) error {
	attribute, ok := self.attributes.get(id)
	if !ok {
		return contractViolation("", id, ErrUnknownAttribute)
	}
	attribute.Type = attributeType
	return nil
}
