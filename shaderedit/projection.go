package shaderedit

// the preview source that renders the asset itself
const PreviewSourceAsset = "Asset"

// write only observer of the session's asset. Implementations render what they
// are given and never feed state back into the model.
// Entities are passed by value.
type Projection interface {
	UseLightUniformsChanged(useLightUniforms bool)

	UniformAdded(uniform Uniform)
	UniformRemoved(id string)
	// `key` is one of "name", "type", "value"
	UniformFieldChanged(uniform Uniform, key string)
	// the value inputs must be rebuilt for the uniform's new type
	UniformValueInputsReset(uniform Uniform)

	AttributeAdded(attribute Attribute)
	AttributeRemoved(id string)
	// `key` is one of "name", "type"
	AttributeFieldChanged(attribute Attribute, key string)

	StageChanged(view StageView)
}

type Previewer interface {
	// the source currently selected for the preview
	PreviewSource() string
	Refresh()
}

type NoopProjection struct {
}

func (self *NoopProjection) UseLightUniformsChanged(useLightUniforms bool) {
}

func (self *NoopProjection) UniformAdded(uniform Uniform) {
}

func (self *NoopProjection) UniformRemoved(id string) {
}

func (self *NoopProjection) UniformFieldChanged(uniform Uniform, key string) {
}

func (self *NoopProjection) UniformValueInputsReset(uniform Uniform) {
}

func (self *NoopProjection) AttributeAdded(attribute Attribute) {
}

func (self *NoopProjection) AttributeRemoved(id string) {
}

func (self *NoopProjection) AttributeFieldChanged(attribute Attribute, key string) {
}

func (self *NoopProjection) StageChanged(view StageView) {
}

// a preview that is always showing `source` and never renders
type StaticPreviewer struct {
	source string
}

func NewStaticPreviewer(source string) *StaticPreviewer {
	return &StaticPreviewer{
		source: source,
	}
}

func (self *StaticPreviewer) PreviewSource() string {
	return self.source
}

func (self *StaticPreviewer) Refresh() {}
