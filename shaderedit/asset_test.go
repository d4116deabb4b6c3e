package shaderedit

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestShaderAssetFromWire(t *testing.T) {
	asset, err := ShaderAssetFromWire(testAssetPub())
	assert.Equal(t, err, nil)

	assert.Equal(t, asset.VertexShader, ShaderProgram{CommittedText: "vertex main", DraftText: "vertex main"})
	assert.Equal(t, asset.VertexShader.HasDraft(), false)
	assert.Equal(t, asset.FragmentShader, ShaderProgram{CommittedText: "fragment main", DraftText: "fragment error"})
	assert.Equal(t, asset.FragmentShader.HasDraft(), true)
	assert.Equal(t, asset.UseLightUniforms, false)

	assert.Equal(t, asset.UniformCount(), 2)
	uniforms := asset.Uniforms()
	assert.Equal(t, uniforms[0].Id, "u1")
	assert.Equal(t, uniforms[1].Id, "u2")
	assert.Equal(t, uniforms[1].Wire(), map[string]any{
		"id":    "u2",
		"name":  "tint",
		"type":  "c",
		"value": []any{float64(1), float64(0.5), float64(0)},
	})

	attribute, ok := asset.Attribute("a1")
	assert.Equal(t, ok, true)
	assert.Equal(t, attribute.Wire(), map[string]any{"id": "a1", "name": "offset", "type": "v3"})
}

func TestShaderAssetFromWireErrors(t *testing.T) {
	pub := testAssetPub()
	delete(pub, "vertexShader")
	_, err := ShaderAssetFromWire(pub)
	assert.NotEqual(t, err, nil)

	pub = testAssetPub()
	pub["uniforms"] = []any{map[string]any{"id": "u1", "type": "v2", "value": []any{float64(1)}}}
	_, err = ShaderAssetFromWire(pub)
	assert.NotEqual(t, err, nil)

	pub = testAssetPub()
	pub["attributes"] = []any{
		map[string]any{"id": "a1", "name": "x"},
		map[string]any{"id": "a1", "name": "y"},
	}
	_, err = ShaderAssetFromWire(pub)
	assert.Equal(t, errors.Is(err, ErrDuplicateId), true)
}

func TestWireId(t *testing.T) {
	id, err := wireId("u1")
	assert.Equal(t, err, nil)
	assert.Equal(t, id, "u1")

	id, err = wireId(float64(12))
	assert.Equal(t, err, nil)
	assert.Equal(t, id, "12")

	_, err = wireId("")
	assert.NotEqual(t, err, nil)
	_, err = wireId(float64(1.5))
	assert.NotEqual(t, err, nil)
	_, err = wireId(nil)
	assert.NotEqual(t, err, nil)
}

func TestShaderAssetUniforms(t *testing.T) {
	asset := NewShaderAsset()
	for _, id := range []string{"1", "2", "3", "4"} {
		err := asset.AddUniform(&Uniform{Id: id, Name: "n" + id, Type: UniformTypeFloat, Value: DefaultUniformValue(UniformTypeFloat)})
		assert.Equal(t, err, nil)
	}

	// the value shape must match the type
	err := asset.AddUniform(&Uniform{Id: "5", Type: UniformTypeVec2, Value: DefaultUniformValue(UniformTypeFloat)})
	assert.NotEqual(t, err, nil)

	err = asset.RemoveUniform("2")
	assert.Equal(t, err, nil)
	err = asset.RemoveUniform("2")
	assert.Equal(t, errors.Is(err, ErrUnknownUniform), true)

	// add then remove leaves the others in order
	err = asset.AddUniform(&Uniform{Id: "6", Type: UniformTypeFloat, Value: DefaultUniformValue(UniformTypeFloat)})
	assert.Equal(t, err, nil)
	err = asset.RemoveUniform("6")
	assert.Equal(t, err, nil)

	ids := []string{}
	for _, uniform := range asset.Uniforms() {
		ids = append(ids, uniform.Id)
	}
	assert.Equal(t, ids, []string{"1", "3", "4"})

	err = asset.SetUniformType("3", UniformTypeColor)
	assert.Equal(t, err, nil)
	uniform, _ := asset.Uniform("3")
	assert.Equal(t, uniform.Value, DefaultUniformValue(UniformTypeColor))

	err = asset.SetUniformValue("3", DefaultUniformValue(UniformTypeFloat))
	assert.NotEqual(t, err, nil)
	err = asset.SetUniformName("9", "x")
	assert.Equal(t, errors.Is(err, ErrUnknownUniform), true)
}

func TestShaderAssetAttributes(t *testing.T) {
	asset := NewShaderAsset()
	err := asset.AddAttribute(&Attribute{Id: "a", Name: "position", Type: "v3"})
	assert.Equal(t, err, nil)
	err = asset.AddAttribute(&Attribute{Id: "a"})
	assert.Equal(t, errors.Is(err, ErrDuplicateId), true)

	err = asset.SetAttributeType("a", "v2")
	assert.Equal(t, err, nil)
	err = asset.SetAttributeName("a", "uv")
	assert.Equal(t, err, nil)
	attribute, _ := asset.Attribute("a")
	assert.Equal(t, *attribute, Attribute{Id: "a", Name: "uv", Type: "v2"})

	err = asset.RemoveAttribute("a")
	assert.Equal(t, err, nil)
	err = asset.RemoveAttribute("a")
	assert.Equal(t, errors.Is(err, ErrUnknownAttribute), true)
	assert.Equal(t, len(asset.Attributes()), 0)
}

func TestParseStage(t *testing.T) {
	for _, stage := range Stages {
		parsed, err := ParseStage(stage.String())
		assert.Equal(t, err, nil)
		assert.Equal(t, parsed, stage)
	}
	_, err := ParseStage("geometry")
	assert.NotEqual(t, err, nil)
}
