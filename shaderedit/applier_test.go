package shaderedit

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

type testApplier struct {
	applier    *Applier
	vertex     *TextBuffer
	fragment   *TextBuffer
	compiler   *testCompiler
	projection *testProjection
	previewer  *testPreviewer
}

func newTestApplier(t *testing.T, pub map[string]any, previewSource string) *testApplier {
	asset, err := ShaderAssetFromWire(pub)
	assert.Equal(t, err, nil)

	compiler := newTestCompiler()
	a := &testApplier{
		vertex:     NewTextBuffer(""),
		fragment:   NewTextBuffer(""),
		compiler:   compiler,
		projection: newTestProjection(),
		previewer:  &testPreviewer{source: previewSource},
	}
	a.applier = NewApplier(
		asset,
		a.vertex,
		a.fragment,
		NewStageChecker(compiler, newTestTranslator(nil)),
		a.projection,
		a.previewer,
	)
	return a
}

func newPrimedTestApplier(t *testing.T, previewSource string) *testApplier {
	a := newTestApplier(t, testAssetPub(), previewSource)
	a.applier.Prime()
	a.projection.takeEvents()
	a.previewer.takeRefreshCount()
	return a
}

func editArgs(before string, after string) []any {
	return []any{TextOperationFromDiff(before, after).Wire()}
}

func TestApplierPrime(t *testing.T) {
	a := newTestApplier(t, testAssetPub(), PreviewSourceAsset)
	a.applier.Prime()

	assert.Equal(t, a.projection.takeEvents(), []string{
		"+uniform u1 time f 0.5",
		"+uniform u2 tint c c(1, 0.5, 0)",
		"useLightUniforms false",
		"+attribute a1 offset v3",
		"vertex clean",
		"fragment drafted-invalid",
	})
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)

	assert.Equal(t, a.vertex.CurrentText(), "vertex main")
	assert.Equal(t, a.fragment.CurrentText(), "fragment error")

	// only the drafted stage is compiled
	assert.Equal(t, a.compiler.compiled, []string{"// f1\nfragment error"})
	assert.Equal(t, a.compiler.liveShaderCount(), 0)

	view := a.applier.StageView(StageFragment)
	assert.Equal(t, view.SaveEnabled(), false)
	assert.Equal(t, len(view.Diagnostics), 1)
	assert.Equal(t, view.Diagnostics[0].Line, 1)
	assert.Equal(t, view.Diagnostics[0].Stage, StageFragment)
}

func TestApplierUniformTypeChange(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandSetUniformProperty, []any{"u1", "type", "v3"})
	assert.Equal(t, err, nil)

	// exactly one reset of the value inputs
	assert.Equal(t, a.projection.takeEvents(), []string{
		"uniform u1 type",
		"reset u1 v3(0, 0, 0)",
	})
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)

	uniform, ok := a.applier.Asset().Uniform("u1")
	assert.Equal(t, ok, true)
	assert.Equal(t, uniform.Type, UniformTypeVec3)
	components, ok := uniform.Value.Components()
	assert.Equal(t, ok, true)
	assert.Equal(t, components, []float64{0, 0, 0})

	// a value of the old shape no longer fits
	err = a.applier.Apply(CommandSetUniformProperty, []any{"u1", "value", float64(2)})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)

	err = a.applier.Apply(CommandSetUniformProperty, []any{"u1", "value", []any{float64(1), float64(2), float64(3)}})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"uniform u1 value"})
	components, _ = uniform.Value.Components()
	assert.Equal(t, components, []float64{1, 2, 3})
}

func TestApplierUniformTypeToColor(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandSetUniformProperty, []any{"u1", "type", "c"})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{
		"uniform u1 type",
		"reset u1 c(1, 1, 1)",
	})

	err = a.applier.Apply(CommandSetUniformProperty, []any{"u1", "type", "t"})
	assert.Equal(t, err, nil)
	uniform, _ := a.applier.Asset().Uniform("u1")
	texture, ok := uniform.Value.Texture()
	assert.Equal(t, ok, true)
	assert.Equal(t, texture, "")
}

func TestApplierEditThenSave(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandEditVertexShader, editArgs("vertex main", "vertex main two"))
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex drafted-valid"})
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)
	assert.Equal(t, a.applier.Asset().VertexShader.DraftText, "vertex main two")
	assert.Equal(t, a.applier.Asset().VertexShader.CommittedText, "vertex main")

	err = a.applier.Apply(CommandSaveVertexShader, []any{})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex clean"})
	assert.Equal(t, a.applier.Asset().VertexShader.CommittedText, "vertex main two")

	// saving again is a no-op on the model but still reports the stage
	compiledCount := len(a.compiler.compiled)
	err = a.applier.Apply(CommandSaveVertexShader, []any{})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex clean"})
	assert.Equal(t, a.applier.Asset().VertexShader.CommittedText, "vertex main two")
	// save never recompiles
	assert.Equal(t, len(a.compiler.compiled), compiledCount)
}

func TestApplierEditInvalid(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandEditVertexShader, editArgs("vertex main", "vertex main\nan error here"))
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex drafted-invalid"})

	view := a.applier.StageView(StageVertex)
	assert.Equal(t, view.SaveEnabled(), false)
	assert.Equal(t, len(view.Diagnostics), 1)
	// two line vertex header
	assert.Equal(t, view.Diagnostics[0].Line, 2)

	// fixing the text clears the diagnostics
	err = a.applier.Apply(CommandEditVertexShader, editArgs("vertex main\nan error here", "vertex main\nfixed"))
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex drafted-valid"})
	assert.Equal(t, len(a.applier.StageView(StageVertex).Diagnostics), 0)

	// editing back to the committed text is clean again
	err = a.applier.Apply(CommandEditVertexShader, editArgs("vertex main\nfixed", "vertex main"))
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"vertex clean"})
}

func TestApplierSaveInvalidDraft(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	// the service may accept a save of a draft the local compiler rejects
	err := a.applier.Apply(CommandSaveFragmentShader, []any{})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"fragment clean"})
	view := a.applier.StageView(StageFragment)
	assert.Equal(t, view.State, StageStateClean)
	assert.Equal(t, len(view.Diagnostics), 0)
	assert.Equal(t, a.applier.Asset().FragmentShader.CommittedText, "fragment error")
}

func TestApplierEditPastEnd(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	operation := &TextOperation{Ops: []TextOp{
		{Kind: TextOpRetain, Amount: 100},
		{Kind: TextOpInsert, Text: "x"},
	}}
	err := a.applier.Apply(CommandEditVertexShader, []any{operation.Wire()})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)
	assert.Equal(t, a.vertex.CurrentText(), "vertex main")
}

func TestApplierUnknownCommand(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply("frobnicate", []any{"u1"})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)
	assert.Equal(t, a.applier.Asset().UniformCount(), 2)

	// later commands still apply
	err = a.applier.Apply(CommandDeleteUniform, []any{"u1"})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"-uniform u1"})
	assert.Equal(t, a.applier.Asset().UniformCount(), 1)
}

func TestApplierMalformedCommand(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	for _, args := range [][]any{
		{},
		{float64(1.5)},
		{map[string]any{}},
	} {
		err := a.applier.Apply(CommandDeleteUniform, args)
		assert.Equal(t, err, nil)
	}
	err := a.applier.Apply(CommandSetUniformProperty, []any{"u1"})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandEditFragmentShader, []any{})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandSetProperty, []any{PropertyUseLightUniforms, "yes"})
	assert.Equal(t, err, nil)

	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)
	assert.Equal(t, a.applier.Asset().UniformCount(), 2)
}

func TestApplierContractViolation(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandDeleteUniform, []any{"u9"})
	var contractErr *ContractError
	assert.Equal(t, errors.As(err, &contractErr), true)
	assert.Equal(t, contractErr.Command, CommandDeleteUniform)
	assert.Equal(t, contractErr.Id, "u9")
	assert.Equal(t, errors.Is(err, ErrUnknownUniform), true)

	err = a.applier.Apply(CommandSetAttributeProperty, []any{"a9", "name", "x"})
	assert.Equal(t, errors.Is(err, ErrUnknownAttribute), true)

	err = a.applier.Apply(CommandNewUniform, []any{map[string]any{"id": "u1", "name": "again", "type": "f"}})
	assert.Equal(t, errors.Is(err, ErrDuplicateId), true)

	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)
}

func TestApplierUniformOrder(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandNewUniform, []any{map[string]any{"id": "u3", "name": "scale", "type": "v2"}})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandDeleteUniform, []any{"u1"})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandNewUniform, []any{map[string]any{"id": "u4", "name": "map", "type": "t", "value": "noise.png"}})
	assert.Equal(t, err, nil)

	assert.Equal(t, a.projection.takeEvents(), []string{
		"+uniform u3 scale v2 v2(0, 0)",
		"-uniform u1",
		"+uniform u4 map t \"noise.png\"",
	})
	assert.Equal(t, a.previewer.takeRefreshCount(), 3)

	ids := []string{}
	for _, uniform := range a.applier.Asset().Uniforms() {
		ids = append(ids, uniform.Id)
	}
	assert.Equal(t, ids, []string{"u2", "u3", "u4"})
}

func TestApplierAttributes(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandNewAttribute, []any{map[string]any{"id": "a2", "name": "weight", "type": "f"}})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandSetAttributeProperty, []any{"a1", "name", "shift"})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandSetAttributeProperty, []any{"a1", "type", "v4"})
	assert.Equal(t, err, nil)
	err = a.applier.Apply(CommandDeleteAttribute, []any{"a2"})
	assert.Equal(t, err, nil)

	assert.Equal(t, a.projection.takeEvents(), []string{
		"+attribute a2 weight f",
		"attribute a1 name",
		"attribute a1 type",
		"-attribute a2",
	})

	attributes := a.applier.Asset().Attributes()
	assert.Equal(t, len(attributes), 1)
	assert.Equal(t, *attributes[0], Attribute{Id: "a1", Name: "shift", Type: "v4"})
}

func TestApplierSetProperty(t *testing.T) {
	a := newPrimedTestApplier(t, PreviewSourceAsset)

	err := a.applier.Apply(CommandSetProperty, []any{PropertyUseLightUniforms, true})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.projection.takeEvents(), []string{"useLightUniforms true"})
	assert.Equal(t, a.applier.Asset().UseLightUniforms, true)
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)

	// other paths are not part of the shader model
	err = a.applier.Apply(CommandSetProperty, []any{"blending", "additive"})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(a.projection.takeEvents()), 0)
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)
}

func TestApplierRefreshRule(t *testing.T) {
	// previewing another asset: text edits do not refresh, everything else does
	a := newPrimedTestApplier(t, "Scene")

	err := a.applier.Apply(CommandEditVertexShader, editArgs("vertex main", "vertex main 2"))
	assert.Equal(t, err, nil)
	assert.Equal(t, a.previewer.takeRefreshCount(), 0)

	err = a.applier.Apply(CommandSaveVertexShader, []any{})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)

	err = a.applier.Apply(CommandSetUniformProperty, []any{"u1", "name", "t"})
	assert.Equal(t, err, nil)
	assert.Equal(t, a.previewer.takeRefreshCount(), 1)

	// previewing this asset: text edits refresh too
	b := newPrimedTestApplier(t, PreviewSourceAsset)
	err = b.applier.Apply(CommandEditFragmentShader, editArgs("fragment error", "fragment"))
	assert.Equal(t, err, nil)
	assert.Equal(t, b.previewer.takeRefreshCount(), 1)
}

func TestApplierChunks(t *testing.T) {
	asset, err := ShaderAssetFromWire(testAssetPub())
	assert.Equal(t, err, nil)
	compiler := newTestCompiler()
	chunks := MapChunkRegistry{"lights": "light one\nlight two"}
	applier := NewApplier(
		asset,
		NewTextBuffer(""),
		NewTextBuffer(""),
		NewStageChecker(compiler, newTestTranslator(chunks)),
		&NoopProjection{},
		NewStaticPreviewer(PreviewSourceAsset),
	)
	applier.Prime()

	err = applier.Apply(CommandEditVertexShader, editArgs("vertex main", "ShaderChunk(lights)\nvertex main"))
	assert.Equal(t, err, nil)
	assert.Equal(t, compiler.compiled[len(compiler.compiled)-1], "// v1\n// v2\nlight one\nlight two\nvertex main")
	// the draft holds the user text, not the expansion
	assert.Equal(t, applier.Asset().VertexShader.DraftText, "ShaderChunk(lights)\nvertex main")
}
