package shaderedit

import (
	"fmt"
	"strconv"
	"strings"
)

// a compiler diagnostic in the coordinates of the user's text.
// `Line` is the raw compiler line minus the stage header line count. It is zero
// or negative when the problem is inside the header, and it is never clamped.
type Diagnostic struct {
	Stage    Stage
	Line     int
	Severity string
	Message  string
}

func (self Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", self.Stage, self.Line, self.Message)
}

// fixed preambles prepended to the user text of each stage before compiling.
// the two headers differ in content and line count.
type StageHeaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

func (self StageHeaders) Header(stage Stage) string {
	switch stage {
	case StageVertex:
		return self.Vertex
	case StageFragment:
		return self.Fragment
	default:
		panic(fmt.Errorf("Unknown stage: %s", stage))
	}
}

// the number of newline delimited lines in `header`.
// a trailing newline counts as one more (empty) line.
func HeaderLineCount(header string) int {
	return strings.Count(header, "\n") + 1
}

func WgslStageHeaders() StageHeaders {
	return StageHeaders{
		Vertex: `// vertex preamble
struct ViewUniforms {
    model_matrix: mat4x4<f32>,
    model_view_matrix: mat4x4<f32>,
    projection_matrix: mat4x4<f32>,
    view_matrix: mat4x4<f32>,
    camera_position: vec3<f32>,
}
@group(0) @binding(0) var<uniform> view_uniforms: ViewUniforms;
`,
		Fragment: `// fragment preamble
struct FragmentUniforms {
    view_matrix: mat4x4<f32>,
    camera_position: vec3<f32>,
}
@group(0) @binding(0) var<uniform> fragment_uniforms: FragmentUniforms;
`,
	}
}

// preambles for GL (WebGL 1 / GLSL ES 1.0) backed compilers
func GlslStageHeaders() StageHeaders {
	return StageHeaders{
		Vertex: `precision mediump float;precision mediump int;
#define SHADER_NAME ShaderMaterial
#define VERTEX_TEXTURES
#define GAMMA_FACTOR 2
#define MAX_DIR_LIGHTS 0
#define MAX_POINT_LIGHTS 0
#define MAX_SPOT_LIGHTS 0
#define MAX_HEMI_LIGHTS 0
#define MAX_SHADOWS 0
#define MAX_BONES 251
uniform mat4 modelMatrix;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
uniform mat3 normalMatrix;
uniform vec3 cameraPosition;
attribute vec3 position;
attribute vec3 normal;
attribute vec2 uv;
#ifdef USE_COLOR
  attribute vec3 color;
#endif
#ifdef USE_MORPHTARGETS
  attribute vec3 morphTarget0;
  attribute vec3 morphTarget1;
  attribute vec3 morphTarget2;
  attribute vec3 morphTarget3;
  #ifdef USE_MORPHNORMALS
    attribute vec3 morphNormal0;
    attribute vec3 morphNormal1;
    attribute vec3 morphNormal2;
    attribute vec3 morphNormal3;
  #else
    attribute vec3 morphTarget4;
    attribute vec3 morphTarget5;
    attribute vec3 morphTarget6;
    attribute vec3 morphTarget7;
  #endif
#endif
#ifdef USE_SKINNING
  attribute vec4 skinIndex;
  attribute vec4 skinWeight;
#endif
`,
		Fragment: `precision mediump float;
precision mediump int;
#define SHADER_NAME ShaderMaterial
#define MAX_DIR_LIGHTS 0
#define MAX_POINT_LIGHTS 0
#define MAX_SPOT_LIGHTS 0
#define MAX_HEMI_LIGHTS 0
#define MAX_SHADOWS 0
#define GAMMA_FACTOR 2
uniform mat4 viewMatrix;
uniform vec3 cameraPosition;
`,
	}
}

type TranslatorSettings struct {
	Headers          StageHeaders `yaml:"headers"`
	DirectiveKeyword string       `yaml:"directive_keyword"`
}

func DefaultTranslatorSettings() *TranslatorSettings {
	return &TranslatorSettings{
		Headers:          WgslStageHeaders(),
		DirectiveKeyword: DefaultDirectiveKeyword,
	}
}

type Translator struct {
	chunks   ChunkRegistry
	settings *TranslatorSettings
}

func NewTranslatorWithDefaults(chunks ChunkRegistry) *Translator {
	return NewTranslator(chunks, DefaultTranslatorSettings())
}

func NewTranslator(chunks ChunkRegistry, settings *TranslatorSettings) *Translator {
	return &Translator{
		chunks:   chunks,
		settings: settings,
	}
}

// the source submitted to the compiler is `header + "\n" + expanded user text`
func (self *Translator) BuildSubmittedSource(stage Stage, userText string) (fullSource string, headerLineCount int) {
	header := self.settings.Headers.Header(stage)
	code := ExpandDirectives(self.settings.DirectiveKeyword, userText, self.chunks)
	fullSource = header + "\n" + code
	headerLineCount = HeaderLineCount(header)
	return
}

// parses a compiler info log. Lines have the form `ERROR: 0:<row>: <message>`
// or `ERROR: <row>:<col>` and `row - headerLineCount` is the user line. Lines that cannot be located are
// kept with raw row 0. Blank lines carry no diagnostic and are dropped.
func TranslateDiagnostics(stage Stage, rawLog string, headerLineCount int) []Diagnostic {
	diagnostics := []Diagnostic{}
	for _, line := range strings.Split(rawLog, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rawLine, severity, message := parseLogLine(line)
		diagnostics = append(diagnostics, Diagnostic{
			Stage:    stage,
			Line:     rawLine - headerLineCount,
			Severity: severity,
			Message:  message,
		})
	}
	return diagnostics
}

func parseLogLine(line string) (rawLine int, severity string, message string) {
	severity, rest, found := strings.Cut(line, ": ")
	switch {
	case !found:
		return 0, "ERROR", line
	case severity != "ERROR" && severity != "WARNING":
		return 0, "ERROR", line
	}

	rest = strings.TrimPrefix(rest, "0:")
	rowStr, after, found := strings.Cut(rest, ":")
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return 0, severity, line
	}
	switch {
	case !found:
		message = ""
	case strings.HasPrefix(after, " "):
		message = strings.TrimSpace(after)
	default:
		// <row>:<col>[: <message>]
		_, message, _ = strings.Cut(after, ":")
		message = strings.TrimSpace(message)
	}
	if message == "" {
		message = line
	}
	return row, severity, message
}
